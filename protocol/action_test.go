package protocol

import (
	"testing"

	"github.com/medularis/go-asterisk/internal/testutil/testlog"
)

func TestEncodeActionDeterministic(t *testing.T) {
	testlog.Start(t)
	f := Fields{}
	f.Set("Action", "Originate")
	f.Set("Channel", "SIP/1234")
	f.Add("Variable", "var1=a")
	f.Add("Variable", "var2=b")
	f.Set("ActionID", "h-1-1")

	want := "Action: Originate\r\n" +
		"ActionID: h-1-1\r\n" +
		"Channel: SIP/1234\r\n" +
		"Variable: var1=a\r\n" +
		"Variable: var2=b\r\n" +
		"\r\n"
	if got := string(EncodeAction(f)); got != want {
		t.Fatalf("encode mismatch:\ngot=%q\nwant=%q", got, want)
	}
}

func TestEncodeActionRepeatedValueOrder(t *testing.T) {
	testlog.Start(t)
	f := Fields{}
	f.Set("Action", "Originate")
	f.Add("Variable", "z=1")
	f.Add("Variable", "a=2")
	got := string(EncodeAction(f))
	want := "Action: Originate\r\nVariable: z=1\r\nVariable: a=2\r\n\r\n"
	if got != want {
		t.Fatalf("caller order not preserved:\ngot=%q\nwant=%q", got, want)
	}
}

func TestFieldsAccessors(t *testing.T) {
	testlog.Start(t)
	f := Fields{}
	if f.Get("Action") != "" {
		t.Fatalf("empty fields should return empty value")
	}
	f.Add("Key", "one")
	f.Add("Key", "two")
	if f.Get("Key") != "one" {
		t.Fatalf("Get should return first value, got=%q", f.Get("Key"))
	}
	f.Set("Key", "three")
	if len(f["Key"]) != 1 || f.Get("Key") != "three" {
		t.Fatalf("Set should replace values, got=%v", f["Key"])
	}
}
