package sqlite

import (
	"path/filepath"
	"testing"

	"viaggi/internal/store/storetest"
)

func TestContract(t *testing.T) {
	repo, err := New(filepath.Join(t.TempDir(), "viaggi.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	storetest.Run(t, repo)
}
