package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default questd data directory name (relative to home).
	DefaultDataDir = ".questd"
	// DBFile is the sqlite database filename.
	DBFile = "questd.db"
	// GenesisFile is the default genesis configuration filename.
	GenesisFile = "genesis.yaml"

	// DefaultListenAddr is the default address of the read API server.
	DefaultListenAddr = ":8475"
)

// DBPath returns the full path to the sqlite database inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// GenesisPath returns the full path to the genesis file inside a data directory.
func GenesisPath(dataDir string) string {
	return filepath.Join(dataDir, GenesisFile)
}
