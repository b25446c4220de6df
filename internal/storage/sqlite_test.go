package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vovakirdan/khet/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func exitShot(board string, length int) core.Shot {
	path := make([][2]int, length)
	for i := range path {
		path[i] = [2]int{0, i}
	}
	return core.Shot{BoardID: board, Gun: 0, Color: "silver", Status: "exited_board", Path: path}
}

func hitShot(board string) core.Shot {
	return core.Shot{
		BoardID: board,
		Gun:     1,
		Color:   "red",
		Status:  "absorbed",
		Path:    [][2]int{{0, 7}, {0, 6}},
		Hit:     true,
		HitX:    0,
		HitY:    6,
		HitKind: "pyramid",
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreOpenHomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.khet/shots.db")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".khet", "shots.db")); err != nil {
		t.Errorf("expected database under home: %v", err)
	}
}

func TestStoreSaveAndRecent(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveShot(exitShot("classic", 12)); err != nil {
		t.Fatalf("SaveShot() failed: %v", err)
	}
	id, err := store.SaveShot(hitShot("classic"))
	if err != nil {
		t.Fatalf("SaveShot() failed: %v", err)
	}
	if _, err := store.SaveShot(exitShot("s-bend", 3)); err != nil {
		t.Fatalf("SaveShot() failed: %v", err)
	}

	shots, err := store.RecentShots("classic", 10)
	if err != nil {
		t.Fatalf("RecentShots() failed: %v", err)
	}
	if len(shots) != 2 {
		t.Fatalf("Expected 2 classic shots, got %d", len(shots))
	}

	// Newest first
	latest := shots[0]
	if latest.ID != id {
		t.Errorf("Expected newest shot %d first, got %d", id, latest.ID)
	}
	if !latest.Hit || latest.HitKind != "pyramid" || latest.HitX != 0 || latest.HitY != 6 {
		t.Errorf("Hit fields not stored: %+v", latest)
	}
	if latest.Length != 2 || !reflect.DeepEqual(latest.Path, [][2]int{{0, 7}, {0, 6}}) {
		t.Errorf("Path not stored: %+v", latest.Path)
	}
	if latest.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	older := shots[1]
	if older.Hit || older.HitX != -1 || older.HitY != -1 {
		t.Errorf("Expected no hit on exiting shot, got %+v", older)
	}
	if older.Length != 12 {
		t.Errorf("Expected length 12, got %d", older.Length)
	}

	all, err := store.RecentShots("", 10)
	if err != nil {
		t.Fatalf("RecentShots() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 shots across boards, got %d", len(all))
	}
}

func TestStoreRecentLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 1; i <= 5; i++ {
		store.SaveShot(exitShot("classic", i))
	}

	shots, err := store.RecentShots("classic", 3)
	if err != nil {
		t.Fatalf("RecentShots() failed: %v", err)
	}
	if len(shots) != 3 {
		t.Fatalf("Expected 3 shots with limit, got %d", len(shots))
	}
	if shots[0].Length != 5 || shots[1].Length != 4 || shots[2].Length != 3 {
		t.Errorf("Shots not in expected order: %v", shots)
	}
}

func TestStoreEmptyPath(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveShot(core.Shot{BoardID: "x", Status: "absorbed"}); err != nil {
		t.Fatalf("SaveShot() failed: %v", err)
	}
	shots, err := store.RecentShots("x", 1)
	if err != nil {
		t.Fatalf("RecentShots() failed: %v", err)
	}
	if len(shots) != 1 || len(shots[0].Path) != 0 {
		t.Errorf("Expected one shot with empty path, got %+v", shots)
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.Stats("classic")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Shots != 0 || !stats.LastShot.IsZero() {
		t.Errorf("Expected empty stats, got %+v", stats)
	}

	store.SaveShot(exitShot("classic", 12))
	store.SaveShot(exitShot("classic", 4))
	store.SaveShot(hitShot("classic"))
	store.SaveShot(core.Shot{BoardID: "classic", Status: "cycle_detected", Path: [][2]int{{1, 1}, {1, 2}}})

	stats, err = store.Stats("classic")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Shots != 4 || stats.Hits != 1 || stats.Exits != 2 || stats.Cycles != 1 {
		t.Errorf("Unexpected counts: %+v", stats)
	}
	if stats.MaxLength != 12 || stats.AvgLength != 5 {
		t.Errorf("Unexpected lengths: max %d avg %v", stats.MaxLength, stats.AvgLength)
	}
}

func TestStoreBoardsAndClear(t *testing.T) {
	store := openTestStore(t)

	store.SaveShot(exitShot("s-bend", 1))
	store.SaveShot(exitShot("classic", 1))
	store.SaveShot(exitShot("classic", 2))

	boards, err := store.Boards()
	if err != nil {
		t.Fatalf("Boards() failed: %v", err)
	}
	if !reflect.DeepEqual(boards, []string{"classic", "s-bend"}) {
		t.Errorf("Unexpected boards %v", boards)
	}

	if err := store.ClearShots("classic"); err != nil {
		t.Fatalf("ClearShots() failed: %v", err)
	}

	classic, _ := store.RecentShots("classic", 10)
	if len(classic) != 0 {
		t.Errorf("Expected 0 classic shots after clear, got %d", len(classic))
	}
	sbend, _ := store.RecentShots("s-bend", 10)
	if len(sbend) != 1 {
		t.Error("s-bend shots should not be affected by clearing classic")
	}
}

func TestStoreAllBoards(t *testing.T) {
	store := openTestStore(t)

	store.SaveShot(exitShot("classic", 12))
	store.SaveShot(hitShot("classic"))
	store.SaveShot(exitShot("s-bend", 5))

	stats, err := store.Stats("")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Shots != 3 || stats.Hits != 1 || stats.Exits != 2 || stats.MaxLength != 12 {
		t.Errorf("Unexpected totals across boards: %+v", stats)
	}
	if stats.LastShot.IsZero() {
		t.Error("Expected a last shot time across boards")
	}

	if err := store.ClearShots(""); err != nil {
		t.Fatalf("ClearShots() failed: %v", err)
	}
	remaining, err := store.RecentShots("", 10)
	if err != nil {
		t.Fatalf("RecentShots() failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected every board cleared, %d shots remain", len(remaining))
	}
	if stats, _ := store.Stats(""); stats.Shots != 0 {
		t.Errorf("Expected empty stats after clearing, got %+v", stats)
	}
}
