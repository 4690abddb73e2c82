/*
Package cli provides command-line interface utilities for Stratum Ganymede.

The cli package includes output formatters, a tick progress reporter, and
common CLI helpers used by the ganymede command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

For long simulations, the tick progress reporter renders a progress bar
with the tick rate:

	progress := cli.NewTickProgress(os.Stdout)
	progress.Start(maxSteps)
	for tick := uint64(0); tick < maxSteps; tick++ {
		// Run a tick
		progress.Update(tick + 1)
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
