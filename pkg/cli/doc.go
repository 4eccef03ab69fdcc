/*
Package cli provides command-line helpers for the phi3 command.

Errors:

Setup failures are returned as ConfigError or CommandError and mapped to the
process exit status with ExitCode.

Port argument:

ParsePort reads the optional positional port with C atoi rules, so "8080abc"
is 8080 and "abc" is 0 (an ephemeral port).

Output Formatting:

Commands that print records support text, JSON and CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, table); err != nil {
		return err
	}

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background(), logger)
	defer stop()
	// ctx is cancelled on SIGINT or SIGTERM
*/
package cli
