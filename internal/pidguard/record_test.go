package pidguard

import (
	"errors"
	"testing"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Record
		wantErr bool
	}{
		{name: "valid", input: "123|1700000000", want: Record{PID: 123, StartTime: 1700000000}},
		{name: "trailing newline", input: "42|7\n", want: Record{PID: 42, StartTime: 7}},
		{name: "zero start time", input: "42|0", want: Record{PID: 42}},
		{name: "empty", input: "", wantErr: true},
		{name: "pid only", input: "123", wantErr: true},
		{name: "extra field", input: "1|2|3", wantErr: true},
		{name: "non-numeric pid", input: "abc|2", wantErr: true},
		{name: "non-numeric start", input: "1|later", wantErr: true},
		{name: "zero pid", input: "0|2", wantErr: true},
		{name: "negative pid", input: "-5|2", wantErr: true},
		{name: "negative start", input: "5|-2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedRecord) {
					t.Errorf("ParseRecord(%q) error = %v, want ErrMalformedRecord", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRecord(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRecord(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if back, _ := ParseRecord(got.String()); back != got {
				t.Errorf("String() does not parse back: %q", got.String())
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusNone:            "PID_NONE",
		StatusOK:              "PID_OK",
		StatusOtherRunning:    "PID_OTHER_RUNNING",
		StatusOtherNotRunning: "PID_OTHER_NOT_RUNNING",
		StatusOtherUnknown:    "PID_OTHER_UNKNOWN",
		Status(99):            "Status(99)",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(status), got, want)
		}
	}
}
