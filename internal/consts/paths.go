package consts

import (
	"os"
	"path/filepath"
)

const (
	HomeDirName    = ".thursday"
	ConfigFileName = "config.yaml"
	DataDirName    = "data"

	LockFileName    = "thursday.lock"
	LedgerFileName  = "fired_slots.txt"
	JournalFileName = "history.jsonl"
)

func HomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, HomeDirName)
}

func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), ConfigFileName)
}

func DefaultDataDir() string {
	return filepath.Join(HomeDir(), DataDirName)
}
