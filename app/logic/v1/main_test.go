package v1

import (
	"os"
	"testing"

	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.SetupIDWorker(1)
	os.Exit(m.Run())
}
