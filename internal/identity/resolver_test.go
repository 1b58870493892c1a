package identity

import (
	"net/http/httptest"
	"testing"
)

func TestResolve_AddressPrecedence(t *testing.T) {
	cases := []struct {
		name         string
		forwardedFor string
		clientIP     string
		remoteAddr   string
		want         string
	}{
		{
			name:         "forwarded-for wins and keeps only first hop",
			forwardedFor: "198.51.100.9, 10.0.0.2, 10.0.0.3",
			clientIP:     "192.0.2.1",
			remoteAddr:   "127.0.0.1:52000",
			want:         "198.51.100.9",
		},
		{
			name:         "single forwarded-for token",
			forwardedFor: "198.51.100.9",
			remoteAddr:   "127.0.0.1:52000",
			want:         "198.51.100.9",
		},
		{
			name:       "client-ip when no forwarded-for",
			clientIP:   "192.0.2.1",
			remoteAddr: "127.0.0.1:52000",
			want:       "192.0.2.1",
		},
		{
			name:       "remote addr fallback strips port",
			remoteAddr: "203.0.113.7:40112",
			want:       "203.0.113.7",
		},
		{
			name:       "remote addr without port kept whole",
			remoteAddr: "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:         "whitespace-only forwarded-for is skipped",
			forwardedFor: "   ",
			clientIP:     "192.0.2.1",
			want:         "192.0.2.1",
		},
		{
			name:         "winning value is trimmed and de-controlled",
			forwardedFor: " 198.51.100.9\r\n , 10.0.0.2",
			want:         "198.51.100.9",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Resolve(GuestID, tc.forwardedFor, tc.clientIP, tc.remoteAddr)
			if v.IP != tc.want {
				t.Fatalf("Resolve(...).IP = %q, want %q", v.IP, tc.want)
			}
		})
	}
}

func TestResolve_UserNormalization(t *testing.T) {
	if v := Resolve(0, "", "", "10.0.0.1"); !v.IsGuest() {
		t.Fatalf("user 0 should be guest, got %+v", v)
	}
	if v := Resolve(42, "", "", "10.0.0.1"); v.IsGuest() || v.UserID != 42 {
		t.Fatalf("authenticated visitor mangled: %+v", v)
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/track", nil)
	r.RemoteAddr = "127.0.0.1:9999"
	r.Header.Set(HeaderForwardedFor, "198.51.100.9, 10.0.0.2")

	v := FromRequest(r, 7)
	if v.UserID != 7 || v.IP != "198.51.100.9" {
		t.Fatalf("FromRequest = %+v, want user 7 ip 198.51.100.9", v)
	}

	r.Header.Del(HeaderForwardedFor)
	r.Header.Set(HeaderClientIP, "192.0.2.1")
	if v := FromRequest(r, GuestID); v.IP != "192.0.2.1" {
		t.Fatalf("client-ip fallback = %+v", v)
	}

	r.Header.Del(HeaderClientIP)
	if v := FromRequest(r, GuestID); v.IP != "127.0.0.1" {
		t.Fatalf("remote addr fallback = %+v", v)
	}
}
