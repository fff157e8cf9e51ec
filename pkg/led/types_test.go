package led

import (
	"testing"
)

func TestHueNext(t *testing.T) {
	// The rotation order is a public contract: red -> blue -> green -> red.
	cases := []struct {
		from Hue
		want Hue
	}{
		{HueRed, HueBlue},
		{HueBlue, HueGreen},
		{HueGreen, HueRed},
	}
	for _, c := range cases {
		if got := c.from.Next(); got != c.want {
			t.Errorf("%s.Next() = %s, want %s", c.from, got, c.want)
		}
	}
}

func TestHueFullCycle(t *testing.T) {
	h := HueRed
	h = h.Next()
	h = h.Next()
	h = h.Next()
	if h != HueRed {
		t.Errorf("three rotations from red = %s, want red", h)
	}
}

func TestHueColor(t *testing.T) {
	cases := []struct {
		hue        Hue
		brightness uint8
		want       Color
	}{
		{HueRed, 10, Color{R: 10}},
		{HueGreen, 10, Color{G: 10}},
		{HueBlue, 10, Color{B: 10}},
		{HueRed, 0, Color{R: DefaultBrightness}}, // zero falls back to default
		{HueBlue, 255, Color{B: 255}},
	}
	for _, c := range cases {
		if got := c.hue.Color(c.brightness); got != c.want {
			t.Errorf("%s.Color(%d) = %+v, want %+v", c.hue, c.brightness, got, c.want)
		}
	}
}

func TestParseHue(t *testing.T) {
	for _, h := range []Hue{HueRed, HueGreen, HueBlue} {
		got, err := ParseHue(h.String())
		if err != nil {
			t.Errorf("ParseHue(%q): %v", h.String(), err)
		}
		if got != h {
			t.Errorf("ParseHue(%q) = %s", h.String(), got)
		}
	}
	if _, err := ParseHue("magenta"); err == nil {
		t.Error("ParseHue accepted an unknown hue")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeAuto, ModeManual} {
		got, err := ParseMode(m.String())
		if err != nil {
			t.Errorf("ParseMode(%q): %v", m.String(), err)
		}
		if got != m {
			t.Errorf("ParseMode(%q) = %s", m.String(), got)
		}
	}
	if _, err := ParseMode("off"); err == nil {
		t.Error("ParseMode accepted an unknown mode")
	}
}

func TestTransition(t *testing.T) {
	t.Run("SetColorInManual", func(t *testing.T) {
		s := State{Hue: HueRed, Mode: ModeManual}
		got := Transition(s, SetColor(HueGreen))
		want := State{Hue: HueGreen, Mode: ModeManual}
		if got != want {
			t.Errorf("Transition = %+v, want %+v", got, want)
		}
	})

	t.Run("SetColorInAutoIsIgnored", func(t *testing.T) {
		s := State{Hue: HueRed, Mode: ModeAuto}
		if got := Transition(s, SetColor(HueGreen)); got != s {
			t.Errorf("SetColor in auto mode changed state: %+v", got)
		}
	})

	t.Run("SetModeImmediate", func(t *testing.T) {
		s := State{Hue: HueBlue, Mode: ModeAuto}
		got := Transition(s, SetMode(ModeManual))
		want := State{Hue: HueBlue, Mode: ModeManual}
		if got != want {
			t.Errorf("Transition = %+v, want %+v", got, want)
		}
	})

	t.Run("SetModeKeepsHue", func(t *testing.T) {
		s := State{Hue: HueGreen, Mode: ModeManual}
		got := Transition(s, SetMode(ModeAuto))
		if got.Hue != HueGreen {
			t.Errorf("mode switch changed hue to %s", got.Hue)
		}
	})
}
