package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/keypoint-density-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("keypoint-density-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("keypoint-density-mcp - MCP server that turns keypoint annotations into density maps")
			fmt.Println()
			fmt.Println("Usage: keypoint-density-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  DENSITY_MCP_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  DENSITY_MCP_MAX_SCALE=3.0      Default max_scale for adaptive radii")
			fmt.Println("  DENSITY_MCP_MAX_RADIUS=15.0    Default max_radius for adaptive radii")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	cfg.Version = Version
	if cfg.Debug {
		log.Printf("Keypoint Density MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Defaults: max_scale=%g max_radius=%g", cfg.Params.MaxScale, cfg.Params.MaxRadius)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
