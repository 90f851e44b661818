package server

import (
	"net/http"
	"testing"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/config"
	"github.com/citysketch/citysketch/internal/editor"
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/tilemap"
	"github.com/citysketch/citysketch/internal/wfc"
)

func testServer(t *testing.T, origins []string) *Server {
	t.Helper()
	cat := catalog.Default()
	tm := wfc.SeedTilemap(
		tilemap.Config{HorizontalCellsAmount: 5, VerticalCellsAmount: 5},
		cat,
		cat.All(),
	)
	ed := editor.New(tm, 42)
	return New(config.WebSocketConfig{
		Port:           4480,
		AllowedOrigins: origins,
		MaxMessageSize: 4096,
		TickMillis:     50,
	}, ed, nil)
}

func requestWithOrigin(t *testing.T, origin, host string) *http.Request {
	t.Helper()
	r, err := http.NewRequest(http.MethodGet, "http://"+host+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	r.Host = host
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestCheckOriginSameHost(t *testing.T) {
	s := testServer(t, nil)

	if !s.checkOrigin(requestWithOrigin(t, "http://localhost:4480", "localhost:4480")) {
		t.Error("same-origin request should be allowed")
	}
	if s.checkOrigin(requestWithOrigin(t, "http://evil.example", "localhost:4480")) {
		t.Error("cross-origin request should be refused")
	}
	if !s.checkOrigin(requestWithOrigin(t, "", "localhost:4480")) {
		t.Error("request without origin should be allowed")
	}
}

func TestCheckOriginAllowlist(t *testing.T) {
	s := testServer(t, []string{"http://editor.example"})

	if !s.checkOrigin(requestWithOrigin(t, "http://editor.example", "localhost:4480")) {
		t.Error("allowlisted origin should be allowed")
	}
	if s.checkOrigin(requestWithOrigin(t, "http://other.example", "localhost:4480")) {
		t.Error("unlisted origin should be refused")
	}

	wildcard := testServer(t, []string{"*"})
	if !wildcard.checkOrigin(requestWithOrigin(t, "http://anything.example", "localhost:4480")) {
		t.Error("wildcard should allow any origin")
	}
}

func TestApplyEdit(t *testing.T) {
	s := testServer(t, nil)

	actions, err := s.applyEdit(editMessage{Action: "primary", X: 3, Y: 3})
	if err != nil {
		t.Fatalf("applyEdit failed: %v", err)
	}
	if len(actions) == 0 {
		t.Error("no actions from a road placement")
	}

	if _, ok := s.editor.Tilemap().FixedTileByCell(grid.Cell{X: 3, Y: 3}); !ok {
		t.Error("edit did not place a tile")
	}

	if _, err := s.applyEdit(editMessage{Action: "primary", X: 99, Y: 1}); err == nil {
		t.Error("out-of-bounds edit should fail")
	}
	if _, err := s.applyEdit(editMessage{Action: "paint", X: 1, Y: 1}); err == nil {
		t.Error("unknown action should fail")
	}
}

func TestSnapshotEvent(t *testing.T) {
	s := testServer(t, nil)
	if _, err := s.applyEdit(editMessage{Action: "primary", X: 2, Y: 2}); err != nil {
		t.Fatal(err)
	}

	snapshot := snapshotEvent(s.editor.Tilemap())
	if snapshot.Type != "snapshot" || snapshot.Width != 5 || snapshot.Height != 5 {
		t.Errorf("snapshot header = %+v", snapshot)
	}
	found := false
	for _, tile := range snapshot.Tiles {
		if tile.X == 2 && tile.Y == 2 {
			found = true
			if tile.ID != int(catalog.LoneRoadID) {
				t.Errorf("snapshot tile id = %d", tile.ID)
			}
		}
	}
	if !found {
		t.Error("placed tile missing from snapshot")
	}
}

func TestActionPayloads(t *testing.T) {
	actions := []tilemap.Action{
		tilemap.PlayAudio{Sound: tilemap.SoundBuildRoadStart},
		tilemap.PlayAudio{Sound: tilemap.SoundDestroyRoad},
	}
	payloads := actionPayloads(actions)
	if len(payloads) != 2 {
		t.Fatalf("payloads = %v", payloads)
	}
	if payloads[0].Type != "play_audio" || payloads[0].Sound != "build_road_start" {
		t.Errorf("payloads[0] = %+v", payloads[0])
	}
	if payloads[1].Sound != "destroy_road" {
		t.Errorf("payloads[1] = %+v", payloads[1])
	}
}
