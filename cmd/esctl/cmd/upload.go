package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vnFuhung2903/vcs-search-toolkit/dto"
	"github.com/vnFuhung2903/vcs-search-toolkit/usecases/services"
)

type uploadOptions struct {
	index string
	docID string
	file  string
}

func newUploadCmd(v *viper.Viper, loadLogger loggerLoader) *cobra.Command {
	var opts uploadOptions

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Index newline-delimited JSON documents",
		Long: `Index every JSON document read from --file (or stdin) into --index, one
request per document, in input order. One acknowledgment per document is
written to stdout. Upload stops at the first failure.

Examples:
  esctl upload --index logs --file events.ndjson
  echo '{"user":"john"}' | esctl upload --index users --id john`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpload(cmd, v, loadLogger, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.index, "index", "i", "", "Target index")
	cmd.Flags().StringVar(&opts.docID, "id", "", "Document id (single document input only)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "NDJSON input file, - for stdin")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}

func runUpload(cmd *cobra.Command, v *viper.Viper, loadLogger loggerLoader, opts uploadOptions) error {
	in := cmd.InOrStdin()
	if opts.file != "-" {
		f, err := os.Open(opts.file)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	out := json.NewEncoder(cmd.OutOrStdout())

	return withService(cmd.Context(), v, loadLogger, func(svc services.ISearchIndexService) error {
		decoder := json.NewDecoder(in)

		if opts.docID != "" {
			var document dto.Document
			if err := decoder.Decode(&document); err != nil {
				return fmt.Errorf("failed to decode document: %w", err)
			}
			if decoder.More() {
				return errors.New("--id accepts exactly one document")
			}
			ack, err := svc.UploadDocument(cmd.Context(), opts.index, document, opts.docID)
			if err != nil {
				return err
			}
			return out.Encode(ack)
		}

		var decodeErr error
		documents := func(yield func(dto.Document) bool) {
			for {
				var document dto.Document
				if err := decoder.Decode(&document); err != nil {
					if !errors.Is(err, io.EOF) {
						decodeErr = fmt.Errorf("failed to decode document: %w", err)
					}
					return
				}
				if !yield(document) {
					return
				}
			}
		}

		acks, err := svc.UploadDocuments(cmd.Context(), opts.index, documents)
		for _, ack := range acks {
			if encodeErr := out.Encode(ack); encodeErr != nil {
				return encodeErr
			}
		}
		if err != nil {
			return err
		}
		return decodeErr
	})
}
