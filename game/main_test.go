package game

import (
	"os"
	"testing"

	"github.com/JosMartins/Drinkster/logger"
)

func TestMain(m *testing.M) {
	logger.InitDevelopment()
	os.Exit(m.Run())
}
