package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
app:
  env: development
jwt:
  ttl_days: 30
modules:
  identity:
    otp:
      window_seconds: 300
  notification:
    consumer_names: "otp_issued, ,sms_audit"
sms:
  http:
    base_delay_ms: 250
instrument:
  log_mask_fields:
    - display_name
    - " payout_handle "
    - ""
`

func newSample(t *testing.T) *Viper {
	t.Helper()

	v, err := NewViperFromBytes("yaml", []byte(sample))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	return v
}

func TestViper_Durations(t *testing.T) {
	v := newSample(t)

	if got := v.GetDay("jwt.ttl_days"); got != 30*24*time.Hour {
		t.Fatalf("GetDay() = %s", got)
	}
	if got := v.GetSecond("modules.identity.otp.window_seconds"); got != 5*time.Minute {
		t.Fatalf("GetSecond() = %s", got)
	}
}

func TestViper_GetArray(t *testing.T) {
	got := newSample(t).GetArray("modules.notification.consumer_names")

	if len(got) != 2 || got[0] != "otp_issued" || got[1] != "sms_audit" {
		t.Fatalf("GetArray() = %q", got)
	}
	if empty := newSample(t).GetArray("missing.key"); len(empty) != 0 {
		t.Fatalf("GetArray(missing) = %q, want empty", empty)
	}
}

func TestViper_GetArray_Sequence(t *testing.T) {
	got := newSample(t).GetArray("instrument.log_mask_fields")

	if len(got) != 2 || got[0] != "display_name" || got[1] != "payout_handle" {
		t.Fatalf("GetArray() = %q", got)
	}
}

func TestViper_GetArray_EnvOverridesSequence(t *testing.T) {
	t.Setenv("WATERCAN_INSTRUMENT_LOG_MASK_FIELDS", "email,address")

	got := newSample(t).GetArray("instrument.log_mask_fields")
	if len(got) != 2 || got[0] != "email" || got[1] != "address" {
		t.Fatalf("GetArray() = %q, want env override", got)
	}
}

func TestViper_GetMillisecond(t *testing.T) {
	if got := newSample(t).GetMillisecond("sms.http.base_delay_ms"); got != 250*time.Millisecond {
		t.Fatalf("GetMillisecond() = %s", got)
	}
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("WATERCAN_APP_ENV", "production")

	if got := newSample(t).GetString("app.env"); got != "production" {
		t.Fatalf("GetString(app.env) = %q, want env override", got)
	}
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	if _, err := NewViperFromBytes(" ", nil); err == nil {
		t.Fatal("expected error for empty config type")
	}
}

func TestNewViper_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("instrument:\n  log_level: info\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	v, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	t.Cleanup(func() { _ = v.Close() })

	changed := make(chan struct{}, 1)
	v.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	if err := os.WriteFile(path, []byte("instrument:\n  log_level: debug\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for v.GetString("instrument.log_level") != "debug" {
		select {
		case <-changed:
		case <-deadline:
			t.Fatalf("log_level = %q after rewrite", v.GetString("instrument.log_level"))
		}
	}
}

func TestNewViper_MissingFile(t *testing.T) {
	if _, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("NewViper() error = nil, want read error")
	}
}

func TestViper_CloseWithoutWatcher(t *testing.T) {
	if err := newSample(t).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
