// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

// Package pos is a typed client for the point-of-sale REST backend.
//
// The Client owns the authenticated request pipeline: it attaches the
// current bearer credential to every outbound call, detects expiry
// reactively (a 401 response, never a timer), refreshes the credential
// through a single-flight GET /refresh shared by all concurrent
// callers, and retries each failed request exactly once with the fresh
// token. A refresh failure is terminal: the credential store is
// cleared and every waiter receives a *RefreshError so the caller can
// force a logout.
//
// Credentials live in a CredentialStore injected at construction.
// MemoryStore keeps the token in memory; FileStore persists it to a
// single 0600 JSON file so CLI invocations share a session.
//
// The typed endpoint surface (Customers, Products, Orders, FillCart,
// PlaceOrder, transactions) is transport-and-auth only: it decodes
// wire payloads but never interprets business semantics. Higher-level
// behavior lives in the cart and billing packages.
package pos
