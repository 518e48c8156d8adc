package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/txn2/logfwd/pkg/fwdmcp"
)

var (
	apiURL      string
	channel     string
	destination string
	timeout     time.Duration
)

func init() {
	Cmd.Flags().StringVar(&apiURL, "api-url", fwdmcp.DefaultAPIURL, "URL of the logfwd REST API")
	Cmd.Flags().StringVarP(&channel, "channel", "c", "", "Channel key as listed by the API, e.g. 'Billing;10.0.0.5:51000'")
	Cmd.Flags().StringVarP(&destination, "destination", "d", "", "Target directory, file path or s3://bucket/prefix")
	Cmd.Flags().DurationVarP(&timeout, "timeout", "t", 2*time.Minute, "Timeout for the export request")
	_ = Cmd.MarkFlagRequired("channel")
	_ = Cmd.MarkFlagRequired("destination")
}

// Cmd is the export subcommand
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export a channel's cached events as gzipped JSON lines",
	Long: `Ask a running logfwd receiver to write the replay cache of one channel
to a local directory or to S3. The file is gzip compressed JSON, one event
per line.

A destination ending in .gz names the file; any other destination is a
directory or key prefix and gets a generated name of the form
<channel>_<unix>_<counter>.jsonl.gz.`,
	Example: "  logfwd export -c 'Billing;10.0.0.5:51000' -d /tmp/exports\n" +
		"  logfwd export -c 'Billing;10.0.0.5:51000' -d ./billing.jsonl.gz\n" +
		"  logfwd export -c 'Billing;10.0.0.5:51000' -d s3://ops-logs/logfwd",
	Run: runExport,
}

func runExport(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := exportChannel(ctx, fwdmcp.NewHTTPClient(apiURL), channel, destination, os.Stdout); err != nil {
		log.Errorf("Export failed: %s", err)
		cancel()
		os.Exit(1)
	}
}

// exportChannel requests the export and reports the result to out
func exportChannel(ctx context.Context, client *fwdmcp.HTTPClient, channel, destination string, out io.Writer) error {
	resp, err := client.Export(ctx, channel, destination)
	if err != nil {
		return errors.Wrapf(err, "exporting %s to %s", channel, destination)
	}
	_, err = fmt.Fprintf(out, "Exported %d events (%d bytes) from %s to %s\n",
		resp.Events, resp.Bytes, resp.Channel, resp.Destination)
	return err
}
