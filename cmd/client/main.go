package main

import (
	"context"
	"fmt"
	"os"

	"github.com/iudanet/centersync/internal/client/cli"
	"github.com/iudanet/centersync/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd := cli.NewRootCommand(iocli.NewStdio(), Version)
	cmd.SetVersionTemplate(versionString())

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("centersync client\nVersion:    %s\nBuild Date: %s\nGit Commit: %s\n",
		Version, BuildDate, GitCommit)
}
