package auth

import (
	"errors"
	"testing"

	"github.com/medularis/go-asterisk/internal/testutil/testlog"
)

func TestStaticTokenValidate(t *testing.T) {
	testlog.Start(t)

	tests := []struct {
		name    string
		stored  string
		input   string
		wantErr error
	}{
		{name: "empty token denied", stored: "", input: "abc", wantErr: ErrUnauthorized},
		{name: "mismatched token denied", stored: "abc", input: "xyz", wantErr: ErrUnauthorized},
		{name: "matching token accepted", stored: "abc", input: "abc", wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := (StaticToken{Token: tc.stored}).Validate(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("validate: got=%v want=%v", err, tc.wantErr)
			}
		})
	}
}

func TestFuncValidator(t *testing.T) {
	testlog.Start(t)

	validator := FuncValidator(func(token string) error {
		if token != "ok" {
			return ErrUnauthorized
		}
		return nil
	})

	if err := validator.Validate("bad"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad token: got=%v want=%v", err, ErrUnauthorized)
	}
	if err := validator.Validate("ok"); err != nil {
		t.Fatalf("ok token: got=%v want=nil", err)
	}
}

func TestFromHeader(t *testing.T) {
	testlog.Start(t)

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "bearer token", header: "Bearer s3cret", want: "s3cret"},
		{name: "missing scheme", header: "s3cret", wantErr: ErrUnauthorized},
		{name: "wrong scheme", header: "Basic s3cret", wantErr: ErrUnauthorized},
		{name: "empty token", header: "Bearer ", wantErr: ErrUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromHeader(tc.header)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("from header: got err=%v want=%v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("token: got=%q want=%q", got, tc.want)
			}
		})
	}
}
