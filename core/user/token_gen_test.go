package user

import (
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	timeout := 3 * 24 * time.Hour
	gen := newTokenGenerator("secret", timeout)

	now := time.Now()
	usr := User{
		ID:        "7f4c1f0e-4a5b-4f0c-9d3e-1b2a3c4d5e6f",
		Name:      "T",
		Username:  "t",
		Email:     "t@test.ao",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = usr.SetPassword("pwd")

	validToken, err := gen.makeToken(usr)
	if err != nil {
		t.Fatalf("makeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := timeout + (24 * time.Hour)
	gen.nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := gen.makeToken(usr)
	if err != nil {
		t.Fatalf("makeToken() failed: %v", err)
	}
	gen.nowFunc = time.Now // reset

	// any login invalidates outstanding tokens
	loggedIn := usr
	loggedIn.LastLogin = now.Add(time.Hour)

	otherGen := newTokenGenerator("other-secret", timeout)

	tests := []struct {
		name    string
		gen     *tokenGenerator
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", usr: usr, wantErr: ErrInvalidToken},
		{name: "invalid parts len", usr: usr, token: "lmaooolol", wantErr: ErrInvalidToken},
		{name: "invalid base32", usr: usr, token: "hahaha-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid timestamp", usr: usr, token: "NRXWY-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid token", usr: usr, token: "HE4TS-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "expired token", usr: usr, token: expiredToken, wantErr: ErrTokenExpired},
		{name: "user logged in since", usr: loggedIn, token: validToken, wantErr: ErrInvalidToken},
		{name: "different secret", gen: otherGen, usr: usr, token: validToken, wantErr: ErrInvalidToken},
		{name: "valid token", usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gen
			if tt.gen != nil {
				g = tt.gen
			}
			if err := g.verifyToken(tt.usr, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	usr := User{ID: "7f4c1f0e-4a5b-4f0c-9d3e-1b2a3c4d5e6f"}
	got, err := decodeUID(EncodeUID(usr))
	if err != nil {
		t.Fatalf("decodeUID() failed: %v", err)
	}
	if got != usr.ID {
		t.Errorf("decodeUID() = %q; want %q", got, usr.ID)
	}
}
