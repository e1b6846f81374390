package mood

import (
	"encoding/json"
	"testing"
)

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		label string
		want  Emotion
	}{
		{"joy", Joy},
		{"JOY", Joy},
		{"  Sadness ", Sadness},
		{"anger", Anger},
		{"fear", Fear},
		{"surprise", Surprise},
		{"neutral", Neutral},
		{"happy", Joy},
		{"sad", Sadness},
		{"angry", Anger},
		{"scared", Fear},
		{"surprised", Surprise},
		{"calm", Neutral},
		{"disgust", Unknown},
		{"", Unknown},
		{"unknown", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseEmotion(tt.label); got != tt.want {
				t.Errorf("ParseEmotion(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestEmotionString(t *testing.T) {
	for _, e := range Emotions() {
		if got := ParseEmotion(e.String()); got != e {
			t.Errorf("ParseEmotion(%q) = %v, want %v", e.String(), got, e)
		}
	}
	if got := Emotion(42).String(); got != "unknown" {
		t.Errorf("Emotion(42).String() = %q, want unknown", got)
	}
	if Emotion(-1).Known() || Unknown.Known() {
		t.Error("out-of-vocabulary emotions should not be known")
	}
}

func TestScoreJSON(t *testing.T) {
	in := []Score{{Joy, 0.7}, {Fear, 0.3}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if want := `[{"label":"joy","strength":0.7},{"label":"fear","strength":0.3}]`; string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var out []Score
	if err := json.Unmarshal([]byte(`[{"label":"Happy","strength":0.5},{"label":"bored","strength":0.5}]`), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out[0].Emotion != Joy || out[1].Emotion != Unknown {
		t.Errorf("Unmarshal = %+v, want joy then unknown", out)
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in      string
		want    Score
		wantErr bool
	}{
		{in: "joy=0.8", want: Score{Joy, 0.8}},
		{in: "sadness= 0.25", want: Score{Sadness, 0.25}},
		{in: "anger", want: Score{Anger, 1}},
		{in: "fear=1.5", want: Score{Fear, 1.5}},
		{in: "boredom=0.5", wantErr: true},
		{in: "joy=lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScore(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseScore(%q) expected error, got %+v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseScore(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
