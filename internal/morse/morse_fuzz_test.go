package morse

import (
	"testing"
	"unicode/utf8"
)

func FuzzHideExtract(f *testing.F) {
	for _, seed := range []string{"HI", "a b", "Hello, World!", " ", "ß", "\x00\xff"} {
		f.Add(seed)
	}

	c := New(nil)
	f.Fuzz(func(t *testing.T, secret string) {
		if !utf8.ValidString(secret) {
			t.Skip()
		}
		want := Representable(secret)

		stego, err := c.Hide([]byte(secret))
		if want == "" {
			if err == nil {
				t.Fatalf("Hide(%q) succeeded with nothing to encode", secret)
			}
			return
		}
		if err != nil {
			t.Fatalf("Hide(%q): %v", secret, err)
		}

		got, err := c.Extract(stego)
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if string(got) != want {
			t.Fatalf("Extract(Hide(%q)) = %q, want %q", secret, got, want)
		}
	})
}

func FuzzExtract(f *testing.F) {
	f.Add("to because , in")
	f.Add("hi,by.to")
	f.Add(". , . ,,..")

	c := New(nil)
	f.Fuzz(func(t *testing.T, text string) {
		got, err := c.Extract(text)
		if err != nil {
			t.Fatalf("Extract(%q): %v", text, err)
		}
		if Representable(string(got)) != string(got) {
			t.Fatalf("Extract(%q) = %q contains unencodable characters", text, got)
		}
	})
}
