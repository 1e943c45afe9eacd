package models

import "testing"

func TestParseCompany(t *testing.T) {
	cases := []struct {
		in      string
		want    Company
		wantErr bool
	}{
		{"Boost", CompanyBoost, false},
		{"SALT2", CompanySalt2, false},
		{"boost", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseCompany(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseCompany(%q) = (%q, %v), want (%q, wantErr=%v)", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}

func TestInvoiceStatus_CashInStatuses(t *testing.T) {
	// Only sent and confirmed invoices count toward expected cash-in.
	want := map[InvoiceStatus]bool{
		InvoiceStatusSent:      true,
		InvoiceStatusConfirmed: true,
	}
	if len(CashInStatuses) != len(want) {
		t.Fatalf("CashInStatuses has %d entries, want %d", len(CashInStatuses), len(want))
	}
	for _, status := range CashInStatuses {
		if !want[status] {
			t.Errorf("unexpected cash-in status %q", status)
		}
	}
}
