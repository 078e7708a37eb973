package memory

import (
	"testing"

	"viaggi/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, New())
}
