package validate

import "testing"

func TestQty(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{" 7 ", 7, true},
		{"0", 0, true},
		{"99", 99, true},
		{"100", 0, false},
		{"-1", 0, false},
		{"two", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := Qty(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Qty(%q) = %d,%t want %d,%t", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPrice(t *testing.T) {
	for _, in := range []string{"0", "9.99", "149.90", "1000000"} {
		if _, ok := Price(in); !ok {
			t.Errorf("Price(%q) rejected", in)
		}
	}
	for _, in := range []string{"-1", "1.999", "abc", "1000000.01", ""} {
		if _, ok := Price(in); ok {
			t.Errorf("Price(%q) accepted", in)
		}
	}
	p, _ := Price("149.90")
	if p.StringFixed(2) != "149.90" {
		t.Fatalf("want 149.90, got %s", p.StringFixed(2))
	}
}

func TestSlug(t *testing.T) {
	if _, ok := Slug("dragon-blade"); !ok {
		t.Fatal("dragon-blade should be a slug")
	}
	for _, in := range []string{"Dragon", "a--b", "-a", "a b", "../x"} {
		if _, ok := Slug(in); ok {
			t.Errorf("Slug(%q) accepted", in)
		}
	}
	if got := Slugify("  Dragon Blade +1 "); got != "dragon-blade-1" {
		t.Fatalf("Slugify: got %q", got)
	}
}

func TestStatusAndRole(t *testing.T) {
	if s, ok := Status(" Completed "); !ok || s != "completed" {
		t.Fatalf("Status: got %q,%t", s, ok)
	}
	if _, ok := Status("shipped"); ok {
		t.Fatal("unknown status accepted")
	}
	if _, ok := Role("admin"); !ok {
		t.Fatal("admin role rejected")
	}
	if _, ok := Role("root"); ok {
		t.Fatal("unknown role accepted")
	}
}

func TestPassword(t *testing.T) {
	if !Password("Passw0rd!") {
		t.Fatal("strong password rejected")
	}
	for _, in := range []string{"short1!", "alllowercase1!", "NoDigits!!", "NoSymbol12"} {
		if Password(in) {
			t.Errorf("Password(%q) accepted", in)
		}
	}
}

func TestPage(t *testing.T) {
	if Page("3") != 3 || Page("0") != 1 || Page("x") != 1 {
		t.Fatal("page parsing")
	}
}
