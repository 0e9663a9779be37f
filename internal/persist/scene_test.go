package persist

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/embercore/ember/internal/game"
)

func TestSceneRoundTrip(t *testing.T) {
	in := &Scene{
		Version: SceneVersion,
		Entities: []EntityRecord{
			{
				Name:      "player",
				Transform: &game.Transform{X: 1.5, Y: -2},
				Control:   &game.Control{Step: 1},
			},
			{
				Name:     "spark",
				Velocity: &game.Velocity{X: 0.25, Y: 0},
				Lifetime: &game.Lifetime{Remaining: 90 * time.Second},
			},
		},
	}

	data, err := EncodeScene(in)
	if err != nil {
		t.Fatalf("EncodeScene: %v", err)
	}
	out, err := DecodeScene(data)
	if err != nil {
		t.Fatalf("DecodeScene: %v", err)
	}

	if len(out.Entities) != 2 {
		t.Fatalf("decoded %d entities, want 2", len(out.Entities))
	}
	player := out.Entities[0]
	if player.Name != "player" || player.Transform == nil || player.Transform.X != 1.5 || player.Transform.Y != -2 {
		t.Fatalf("player decoded as %+v", player)
	}
	if player.Velocity != nil || player.Lifetime != nil {
		t.Fatal("absent components materialized on decode")
	}
	spark := out.Entities[1]
	if spark.Lifetime == nil || spark.Lifetime.Remaining != 90*time.Second {
		t.Fatalf("spark lifetime decoded as %+v", spark.Lifetime)
	}
}

func TestDecodeDetectsTampering(t *testing.T) {
	data, err := EncodeScene(DefaultScene())
	if err != nil {
		t.Fatalf("EncodeScene: %v", err)
	}

	tampered := bytes.Replace(data, []byte("player"), []byte("hacker"), 1)
	if bytes.Equal(tampered, data) {
		t.Fatal("test setup: payload not modified")
	}

	if _, err := DecodeScene(tampered); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("DecodeScene err = %v, want ErrChecksumMismatch", err)
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	data, err := EncodeScene(DefaultScene())
	if err != nil {
		t.Fatalf("EncodeScene: %v", err)
	}
	if _, err := DecodeScene(data[:len(data)/2]); err == nil {
		t.Fatal("DecodeScene accepted a truncated snapshot")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeScene([]byte("not a scene at all {{{")); err == nil {
		t.Fatal("DecodeScene accepted garbage")
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	data, err := EncodeScene(&Scene{Version: SceneVersion + 7})
	if err != nil {
		t.Fatalf("EncodeScene: %v", err)
	}
	if _, err := DecodeScene(data); !errors.Is(err, ErrVersionUnsupported) {
		t.Fatalf("DecodeScene err = %v, want ErrVersionUnsupported", err)
	}
}

func TestDecodeNormalizesNames(t *testing.T) {
	// The same name spelled as one rune and as e + combining acute.
	composed := "café"
	decomposed := "café"
	if composed == decomposed {
		t.Fatal("test setup: forms already equal")
	}

	data, err := EncodeScene(&Scene{
		Version:  SceneVersion,
		Entities: []EntityRecord{{Name: decomposed}},
	})
	if err != nil {
		t.Fatalf("EncodeScene: %v", err)
	}
	out, err := DecodeScene(data)
	if err != nil {
		t.Fatalf("DecodeScene: %v", err)
	}
	if out.Entities[0].Name != composed {
		t.Fatalf("name = %q, want NFC form %q", out.Entities[0].Name, composed)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a, err := EncodeScene(DefaultScene())
	if err != nil {
		t.Fatalf("EncodeScene: %v", err)
	}
	b, err := EncodeScene(DefaultScene())
	if err != nil {
		t.Fatalf("EncodeScene: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same scene encoded to different bytes")
	}
}
