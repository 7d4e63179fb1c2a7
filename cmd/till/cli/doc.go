// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the scaffolding for the till command line
// tool: the command tree, flag binding, the operator's saved profile
// and session, CLI configuration, and output formatting.
package cli
