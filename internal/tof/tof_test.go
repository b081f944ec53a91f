package tof

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/omwave/internal/dynamo"
)

func TestEnergyFromTOF(t *testing.T) {
	tests := []struct {
		tof  float64
		want float64
	}{
		{100, 1255.5421},
		{399.5482, 25},
		{1000, 3.8608},
	}
	for _, tt := range tests {
		got, err := EnergyFromTOF(tt.tof)
		if err != nil {
			t.Fatalf("tof %g: %v", tt.tof, err)
		}
		if math.Abs(got-tt.want) > 1e-3*math.Max(1, tt.want) {
			t.Errorf("tof %g: energy = %.4f, want %.4f", tt.tof, got, tt.want)
		}
	}
}

func TestEnergyFromTOFFasterThanLight(t *testing.T) {
	_, err := EnergyFromTOF(0.001)
	if !errors.Is(err, ErrFasterThanLight) {
		t.Fatalf("expected ErrFasterThanLight, got %v", err)
	}
}

func TestEnergyFromTOFAtLightSpeed(t *testing.T) {
	light := nsPerCmPerMps * DefaultDistance / SpeedOfLight
	for _, tof := range []float64{light, light / 2} {
		got, err := EnergyFromTOF(tof)
		if !errors.Is(err, ErrFasterThanLight) {
			t.Errorf("tof %v: energy = %v, err = %v; expected ErrFasterThanLight", tof, got, err)
		}
	}
}

func TestEnergyFromTOFNeverInfinite(t *testing.T) {
	light := nsPerCmPerMps * DefaultDistance / SpeedOfLight
	for _, tof := range []float64{math.Nextafter(light, math.Inf(1)), light * (1 + 1e-12), 1e300} {
		got, err := EnergyFromTOF(tof)
		if err == nil && (math.IsInf(got, 0) || math.IsNaN(got) || got <= 0) {
			t.Errorf("tof %v: energy = %v with nil error", tof, got)
		}
	}
}

func TestTOFFromEnergyTinyEnergy(t *testing.T) {
	for _, e := range []float64{1e-9, 1e-15, 1e-20} {
		tof, err := TOFFromEnergy(e)
		if err != nil {
			t.Fatalf("energy %g: %v", e, err)
		}
		if math.IsInf(tof, 0) || math.IsNaN(tof) || tof <= 0 {
			t.Fatalf("energy %g: tof = %v", e, tof)
		}
		// Non-relativistic limit: v = c·sqrt(2E/m).
		v := SpeedOfLight * math.Sqrt(2*e/DefaultNeutronMass)
		want := nsPerCmPerMps * DefaultDistance / v
		if math.Abs(tof-want)/want > 1e-6 {
			t.Errorf("energy %g: tof = %g, want %g", e, tof, want)
		}
	}
}

func TestRejectsNonPositiveInput(t *testing.T) {
	for _, v := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := EnergyFromTOF(v); !errors.Is(err, dynamo.ErrDomain) {
			t.Errorf("EnergyFromTOF(%g): expected domain error, got %v", v, err)
		}
		if _, err := TOFFromEnergy(v); !errors.Is(err, dynamo.ErrDomain) {
			t.Errorf("TOFFromEnergy(%g): expected domain error, got %v", v, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, e := range []float64{0.5, 5, 25, 100, 1255} {
		tof, err := TOFFromEnergy(e)
		if err != nil {
			t.Fatal(err)
		}
		back, err := EnergyFromTOF(tof)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(back-e)/e > 1e-9 {
			t.Errorf("energy %g -> tof %g -> energy %g", e, tof, back)
		}
	}
}

func TestTOFDecreasesWithEnergy(t *testing.T) {
	prev := math.Inf(1)
	for _, e := range []float64{1, 10, 100, 1000, 10000} {
		tof, err := TOFFromEnergy(e)
		if err != nil {
			t.Fatal(err)
		}
		if tof >= prev {
			t.Errorf("tof(%g) = %g not below %g", e, tof, prev)
		}
		light := nsPerCmPerMps * DefaultDistance / SpeedOfLight
		if tof <= light {
			t.Errorf("tof(%g) = %g faster than light (%g)", e, tof, light)
		}
		prev = tof
	}
}

func TestBeamlineOverrides(t *testing.T) {
	b := Beamline{Distance: DefaultDistance / 2, Mass: DefaultNeutronMass}
	full, _ := TOFFromEnergy(25)
	half, err := b.TOFFromEnergy(25)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(half-full/2) > 1e-9 {
		t.Errorf("half distance tof = %g, want %g", half, full/2)
	}

	if _, err := (Beamline{}).EnergyFromTOF(100); !errors.Is(err, dynamo.ErrDomain) {
		t.Errorf("zero beamline: expected domain error, got %v", err)
	}
}
