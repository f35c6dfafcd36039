package coretest

import (
	"testing"

	"task_portal/internal/core"
	"task_portal/internal/storage/storetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.Store { return NewMemoryStore() })
}
