// Copyright 2026 The Till Authors
// SPDX-License-Identifier: Apache-2.0

package billing

import (
	"sort"
	"strings"
	"time"

	"github.com/tillworks/till/pos"
)

// dateLayout is the calendar-day form used by FilterByDate, matching
// the date portion of RFC 3339.
const dateLayout = "2006-01-02"

// Record is the client-side join of one order with its customer.
// Records exist only for orders whose customer lookup succeeded;
// there are no partial records.
type Record struct {
	OrderID     string         `json:"orderId" yaml:"orderId"`
	BillRef     string         `json:"billRef,omitempty" yaml:"billRef,omitempty"`
	BillDate    time.Time      `json:"billDate" yaml:"billDate"`
	CustomerID  string         `json:"customerId" yaml:"customerId"`
	Name        string         `json:"name" yaml:"name"`
	Contact     string         `json:"contact" yaml:"contact"`
	Address     string         `json:"address" yaml:"address"`
	Outstanding float64        `json:"outstanding" yaml:"outstanding"`
	OrderValue  float64        `json:"orderValue" yaml:"orderValue"`
	Cart        []pos.CartLine `json:"cart" yaml:"cart"`
}

// RecordSet is an ordered collection of billing records. All views are
// pure: they return fresh slices and never touch the network or mutate
// the receiver.
type RecordSet []Record

// Direction orders a Sort chronologically.
type Direction int

const (
	// Asc sorts oldest first.
	Asc Direction = iota
	// Desc sorts newest first.
	Desc
)

// Filter keeps records whose customer name contains text,
// case-insensitively. Empty text keeps everything.
func (s RecordSet) Filter(text string) RecordSet {
	needle := strings.ToLower(text)
	filtered := make(RecordSet, 0, len(s))
	for _, record := range s {
		if strings.Contains(strings.ToLower(record.Name), needle) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// FilterByDate keeps records whose bill date falls on the given UTC
// calendar day ("2006-01-02"). An unparseable day matches nothing.
func (s RecordSet) FilterByDate(day string) RecordSet {
	if _, err := time.Parse(dateLayout, day); err != nil {
		return RecordSet{}
	}
	filtered := make(RecordSet, 0, len(s))
	for _, record := range s {
		if record.BillDate.UTC().Format(dateLayout) == day {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// Sort returns the records ordered chronologically by bill date. Both
// directions sort stably: equal timestamps keep their relative order,
// which makes repeated sorting with the same direction idempotent.
// For distinct timestamps, sorting asc and then desc yields the exact
// reversed sequence.
func (s RecordSet) Sort(direction Direction) RecordSet {
	sorted := make(RecordSet, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		if direction == Asc {
			return sorted[i].BillDate.Before(sorted[j].BillDate)
		}
		return sorted[j].BillDate.Before(sorted[i].BillDate)
	})
	return sorted
}

// Paginate returns the 1-indexed page of pageSize records and the
// total page count, ceiling(len/pageSize). Pages past the end are
// empty; a non-positive pageSize or page yields no pages.
func (s RecordSet) Paginate(pageSize, page int) (RecordSet, int) {
	if pageSize < 1 || page < 1 {
		return RecordSet{}, 0
	}

	totalPages := (len(s) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start >= len(s) {
		return RecordSet{}, totalPages
	}
	end := min(start+pageSize, len(s))

	window := make(RecordSet, end-start)
	copy(window, s[start:end])
	return window, totalPages
}
