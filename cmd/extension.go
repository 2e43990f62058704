package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// RunExtension attempts to find and execute an external rebal-<subcommand>
// binary. The global flags are passed to it in their environment variables.
// It returns (true, exitCode) if an extension was found and executed, and
// (false, 0) otherwise.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "rebal-" + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		slog.Debug("external command not found in PATH", "command", externalCmdName, "error", err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv returns the global flags as environment variables.
func extensionEnv() []string {
	return []string{
		EnvLedgerFile + "=" + *ledgerFile,
		EnvMarketFile + "=" + *marketFile,
		EnvTargetsFile + "=" + *targetsFile,
		EnvDB + "=" + *dbFile,
		EnvCurrency + "=" + *defaultCurrency,
		EnvPriceURL + "=" + *priceURL,
		EnvPricePath + "=" + *pricePath,
		EnvLogLevel + "=" + *logLevel,
		EnvEODHDKey + "=" + *eodhdKey,
	}
}
