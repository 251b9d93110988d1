package vaccines

import (
	"testing"
	"time"

	"childcare-vaccines/internal/domain/babies"
)

func boolPtr(b bool) *bool { return &b }

func findByName(doses []Dose, name string) (Dose, bool) {
	for _, d := range doses {
		if d.Name == name {
			return d, true
		}
	}
	return Dose{}, false
}

func TestGenerate_RecommendedDates(t *testing.T) {
	b := babies.Baby{ID: "baby-1", BirthDate: day(2024, 1, 15)}
	doses := Generate(b, GenerateOptions{Now: day(2024, 2, 1)})

	bcg, ok := findByName(doses, "BCG")
	if !ok || !bcg.RecommendedDate.Equal(day(2024, 1, 15)) {
		t.Fatalf("expected BCG on birth date, got %#v", bcg)
	}
	hexa, ok := findByName(doses, "Hexavalente (1ra dosis)")
	if !ok || !hexa.RecommendedDate.Equal(day(2024, 3, 15)) {
		t.Fatalf("expected Hexavalente (1ra dosis) on 2024-03-15, got %#v", hexa)
	}

	for _, d := range doses {
		if want := AddMonths(b.BirthDate, d.AgeInMonths); !d.RecommendedDate.Equal(want) {
			t.Fatalf("%s: recommended %s, want %s", d.Name, d.RecommendedDate, want)
		}
		if d.IsApplied || d.AppliedDate != nil || len(d.RemindersSent) != 0 {
			t.Fatalf("%s: expected fresh dose, got %#v", d.Name, d)
		}
		if d.BabyID != b.ID {
			t.Fatalf("%s: expected baby id %q, got %q", d.Name, b.ID, d.BabyID)
		}
	}
}

func TestGenerate_EndOfMonthBirthDate(t *testing.T) {
	doses := Generate(babies.Baby{ID: "b", BirthDate: day(2024, 1, 31)}, GenerateOptions{Rotavirus: RotavirusNever})

	hexaR, _ := findByName(doses, "Hexavalente (Refuerzo)")
	if hexaR.AgeInMonths != 18 || !hexaR.RecommendedDate.Equal(day(2025, 7, 31)) {
		t.Fatalf("expected 18-month dose on 2025-07-31, got %s", hexaR.RecommendedDate)
	}
	flu2, _ := findByName(doses, "Influenza (2da dosis)")
	if !flu2.RecommendedDate.Equal(day(2024, 8, 31)) {
		t.Fatalf("expected Influenza (2da dosis) on 2024-08-31, got %s", flu2.RecommendedDate)
	}
	covid2, _ := findByName(doses, "COVID-19 (2da dosis)*")
	if !covid2.RecommendedDate.Equal(day(2029, 2, 28)) {
		t.Fatalf("expected COVID-19 (2da dosis) clamped to 2029-02-28, got %s", covid2.RecommendedDate)
	}
}

func TestGenerate_CountAndRotavirusByAge(t *testing.T) {
	birth := day(2024, 1, 15)
	cases := []struct {
		name      string
		now       time.Time
		wantThird bool
	}{
		{"newborn", day(2024, 1, 15), true},
		{"exactly six months", day(2024, 7, 15), true},
		{"six months and a bit", day(2024, 8, 14), true},
		{"seven months", day(2024, 8, 15), false},
		{"two years", day(2026, 1, 15), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doses := Generate(babies.Baby{ID: "b", BirthDate: birth}, GenerateOptions{Now: tc.now, Rotavirus: RotavirusByAge})

			want := FixedDoseCount()
			if tc.wantThird {
				want++
			}
			if len(doses) != want {
				t.Fatalf("expected %d doses, got %d", want, len(doses))
			}
			_, has := findByName(doses, "Rotavirus (3ra dosis)*")
			if has != tc.wantThird {
				t.Fatalf("expected third rotavirus dose = %v", tc.wantThird)
			}
		})
	}
}

func TestGenerate_FixedCount(t *testing.T) {
	if got := FixedDoseCount(); got != 24 {
		t.Fatalf("expected 24 fixed catalog entries, got %d", got)
	}
}

func TestGenerate_RotavirusPolicyAndBrandOverride(t *testing.T) {
	old := day(2020, 1, 1)
	now := day(2024, 1, 1)

	always := Generate(babies.Baby{ID: "b", BirthDate: old}, GenerateOptions{Now: now, Rotavirus: RotavirusAlways})
	if _, ok := findByName(always, "Rotavirus (3ra dosis)*"); !ok {
		t.Fatalf("expected third dose with always policy")
	}

	never := Generate(babies.Baby{ID: "b", BirthDate: now}, GenerateOptions{Now: now, Rotavirus: RotavirusNever})
	if _, ok := findByName(never, "Rotavirus (3ra dosis)*"); ok {
		t.Fatalf("expected no third dose with never policy")
	}

	brand := Generate(babies.Baby{ID: "b", BirthDate: old, RotavirusThreeDoseBrand: boolPtr(true)}, GenerateOptions{Now: now, Rotavirus: RotavirusNever})
	if _, ok := findByName(brand, "Rotavirus (3ra dosis)*"); !ok {
		t.Fatalf("expected brand flag to override policy")
	}
}

func TestGenerate_OrderedByAgeThenCatalog(t *testing.T) {
	doses := Generate(babies.Baby{ID: "b", BirthDate: day(2024, 1, 15)}, GenerateOptions{Rotavirus: RotavirusAlways})

	for i := 1; i < len(doses); i++ {
		if doses[i].AgeInMonths < doses[i-1].AgeInMonths {
			t.Fatalf("doses out of order at %d: %d after %d", i, doses[i].AgeInMonths, doses[i-1].AgeInMonths)
		}
	}

	want := []string{"BCG", "Hepatitis B", "Hexavalente (1ra dosis)", "Rotavirus (1ra dosis)", "Neumocócica Conjugada (1ra dosis)"}
	for i, name := range want {
		if doses[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, doses[i].Name)
		}
	}
	last := doses[len(doses)-1]
	if last.Name != "COVID-19 (3ra dosis)*" || last.AgeInMonths != 62 || !last.Optional {
		t.Fatalf("unexpected last dose %#v", last)
	}
}

func TestGenerate_DeterministicIDs(t *testing.T) {
	b := babies.Baby{ID: "baby-1", BirthDate: day(2024, 1, 15)}
	opts := GenerateOptions{Rotavirus: RotavirusAlways}

	a := Generate(b, opts)
	c := Generate(b, opts)
	seen := map[string]bool{}
	for i := range a {
		if a[i].ID != c[i].ID {
			t.Fatalf("expected stable id for %s", a[i].Name)
		}
		if seen[a[i].ID] {
			t.Fatalf("duplicate id %s", a[i].ID)
		}
		seen[a[i].ID] = true
	}

	other := Generate(babies.Baby{ID: "baby-2", BirthDate: b.BirthDate}, opts)
	if other[0].ID == a[0].ID {
		t.Fatalf("expected ids to differ between babies")
	}

	// mover la fecha no cambia los IDs
	moved := Generate(babies.Baby{ID: "baby-1", BirthDate: day(2024, 2, 1)}, opts)
	if moved[3].ID != a[3].ID {
		t.Fatalf("expected id to depend on slot only")
	}
}

func TestGenerate_ZeroBirthDateIsEmpty(t *testing.T) {
	doses := Generate(babies.Baby{ID: "b"}, GenerateOptions{})
	if doses == nil || len(doses) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", doses)
	}
}

func TestParseRotavirusPolicy(t *testing.T) {
	if p, err := ParseRotavirusPolicy(""); err != nil || p != RotavirusByAge {
		t.Fatalf("expected default by_age, got %q %v", p, err)
	}
	if p, err := ParseRotavirusPolicy(" ALWAYS "); err != nil || p != RotavirusAlways {
		t.Fatalf("expected always, got %q %v", p, err)
	}
	if _, err := ParseRotavirusPolicy("sometimes"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
