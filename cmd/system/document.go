package system

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	s3pkg "github.com/Alijeyrad/wscontext/pkg/s3"
)

// NewDocumentCommand manages description documents kept in the bucket.
// Endpoints pick them up through document: s3://documents/<endpoint>.wsdl.
func NewDocumentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Manage endpoint description documents in S3",
	}
	cmd.AddCommand(newDocumentPutCommand(), newDocumentURLCommand(), newDocumentRmCommand())
	return cmd
}

func openBucket(cmd *cobra.Command) (*s3pkg.Client, error) {
	cfg, err := readConfig(cmd)
	if err != nil {
		return nil, err
	}
	client, err := s3pkg.New(cmd.Context(), cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	return client, nil
}

func newDocumentPutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <endpoint> <file>",
		Short: "Upload the description document of an endpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			client, err := openBucket(cmd)
			if err != nil {
				return err
			}
			location, err := client.PutDocument(cmd.Context(), args[0], doc)
			if err != nil {
				return err
			}
			fmt.Println(location)
			return nil
		},
	}
}

func newDocumentURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "url <endpoint>",
		Short: "Print a presigned download URL for an endpoint's document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openBucket(cmd)
			if err != nil {
				return err
			}
			u, err := client.DocumentURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(u)
			return nil
		},
	}
}

func newDocumentRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <endpoint>",
		Short: "Delete an endpoint's document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openBucket(cmd)
			if err != nil {
				return err
			}
			return client.DeleteDocument(cmd.Context(), args[0])
		},
	}
}
