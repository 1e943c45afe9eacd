package utils

import "testing"

func TestParseTargetMonth(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"2026-02", false},
		{"2026-13", true},
		{"2026-2", true},
		{"202602", true},
		{"2026-02-01", true},
		{"", true},
	}
	for _, tc := range cases {
		_, err := ParseTargetMonth(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseTargetMonth(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
	}
}

func TestPreviousMonth(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-02", "2026-01"},
		{"2026-01", "2025-12"},
		{"2024-03", "2024-02"},
	}
	for _, tc := range cases {
		got, err := PreviousMonth(tc.in)
		if err != nil {
			t.Fatalf("PreviousMonth(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("PreviousMonth(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMonthsBack(t *testing.T) {
	months, err := MonthsBack("2026-02", 3)
	if err != nil {
		t.Fatalf("MonthsBack: %v", err)
	}
	want := []string{"2025-12", "2026-01", "2026-02"}
	if len(months) != len(want) {
		t.Fatalf("MonthsBack returned %v, want %v", months, want)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Errorf("MonthsBack[%d] = %q, want %q", i, months[i], want[i])
		}
	}

	if _, err := MonthsBack("2026-2", 3); err == nil {
		t.Error("MonthsBack accepted malformed month")
	}
	if months, _ := MonthsBack("2026-02", 0); months != nil {
		t.Errorf("MonthsBack with n=0 = %v, want nil", months)
	}
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2026-02")
	if err != nil {
		t.Fatal(err)
	}
	if start.Format("2006-01-02") != "2026-02-01" {
		t.Errorf("start = %s, want 2026-02-01", start.Format("2006-01-02"))
	}
	if end.Format("2006-01-02") != "2026-03-01" {
		t.Errorf("end = %s, want 2026-03-01", end.Format("2006-01-02"))
	}
}

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"ops@boost.example", true},
		{"a.b+c@sub.domain.co.jp", true},
		{"not-an-email", false},
		{"missing@tld", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValidEmail(tc.in); got != tc.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	if len(got) != 3 {
		t.Fatalf("UniqueSlice kept %d items, want 3: %v", len(got), got)
	}
}
