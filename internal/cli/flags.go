package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/turrisxyz/openproject/internal/domain"
)

// dateValue is a pflag.Value for optional YYYY-MM-DD date flags. An empty
// string or "none" clears the date, so `--due none` removes a due date.
type dateValue struct {
	date *time.Time
	set  bool
}

var _ pflag.Value = (*dateValue)(nil)

func (v *dateValue) Set(s string) error {
	v.set = true
	if s == "" || s == "none" {
		v.date = nil
		return nil
	}
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	v.date = domain.DatePtr(domain.NormalizeDate(d))
	return nil
}

func (v *dateValue) String() string {
	if v.date == nil {
		return ""
	}
	return v.date.Format(domain.DateLayout)
}

func (v *dateValue) Type() string { return "date" }

// Changed reports whether the flag was provided on the command line.
func (v *dateValue) Changed() bool { return v.set }
