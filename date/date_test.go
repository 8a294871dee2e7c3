package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2023-03-14", New(2023, time.March, 14), false},
		{"2025-7-1", New(2025, time.July, 1), false},
		{"2025/07/01", Date{}, true},
		{"", Date{}, true},
	}
	for _, tc := range testCases {
		got, err := Parse(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestAdd(t *testing.T) {
	d := New(2024, time.February, 28)
	if got, want := d.Add(1), New(2024, time.February, 29); got != want {
		t.Errorf("Add(1) = %v, want %v", got, want)
	}
	if got, want := d.Add(2), New(2024, time.March, 1); got != want {
		t.Errorf("Add(2) = %v, want %v", got, want)
	}
	if got, want := New(2024, time.January, 1).Add(-1), New(2023, time.December, 31); got != want {
		t.Errorf("Add(-1) = %v, want %v", got, want)
	}
}

func TestJSONKey(t *testing.T) {
	in := map[Date]int{New(2023, 3, 14): 1000}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("json.Marshal() unexpected error = %v", err)
	}
	if got, want := string(data), `{"2023-03-14":1000}`; got != want {
		t.Errorf("json.Marshal() = %s, want %s", got, want)
	}
	var out map[Date]int
	if err := json.Unmarshal([]byte(`{"2023-3-14": 5}`), &out); err != nil {
		t.Fatalf("json.Unmarshal() unexpected error = %v", err)
	}
	if out[New(2023, 3, 14)] != 5 {
		t.Errorf("json.Unmarshal() = %v, want 2023-03-14:5", out)
	}
}

func TestRangeDays(t *testing.T) {
	r := NewRange(New(2023, 12, 30), New(2024, 1, 2))
	var got []string
	for d := range r.Days() {
		got = append(got, d.String())
	}
	want := []string{"2023-12-30", "2023-12-31", "2024-01-01", "2024-01-02"}
	if len(got) != len(want) {
		t.Fatalf("Days() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Days()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}
	if !r.Contains(New(2024, 1, 1)) || r.Contains(New(2024, 1, 3)) {
		t.Errorf("Contains() mismatch on range %v", r)
	}
	if empty := NewRange(New(2024, 1, 2), New(2024, 1, 1)); empty.Len() != 0 {
		t.Errorf("Len() of reversed range = %d, want 0", empty.Len())
	}
}
