// SPDX-License-Identifier: Apache-2.0

package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"

	"github.com/wkelly17/bibleassembler/pkg/api"
	"github.com/wkelly17/bibleassembler/pkg/catalog"
	"github.com/wkelly17/bibleassembler/pkg/convert"
	"github.com/wkelly17/bibleassembler/pkg/core"
	"github.com/wkelly17/bibleassembler/pkg/mailer"
	"github.com/wkelly17/bibleassembler/pkg/provisioner"
	"github.com/wkelly17/bibleassembler/pkg/util/httpclient"
)

// exec loads a DocumentRequest from options.RequestPath, runs the core
// generation pipeline, and dispatches the optional conversion and mailing
// steps the request asked for.
func exec(ctx context.Context, options *Options) error {
	req, err := loadRequest(options.RequestPath)
	if err != nil {
		return fmt.Errorf("docgen: loading request: %w", err)
	}
	if err := api.ValidateDocumentRequest(req); err != nil {
		return fmt.Errorf("docgen: invalid request: %w", err)
	}

	cat, err := catalog.Load(options.CatalogPath, time.Duration(options.CatalogTTL)*time.Second)
	if err != nil {
		return fmt.Errorf("docgen: loading catalog: %w", err)
	}

	httpClient := httpclient.NewCachingClient(ctx, options.CacheDir, options.GitHubToken)
	cloner := provisioner.NewGitHubAwareCloner(httpClient)
	prov := provisioner.New(options.CacheDir, httpClient, cloner)

	outcome, err := core.Generate(ctx, req, cat, prov, core.Options{
		OutputDir: options.Destination,
		Workers:   options.Workers,
		FailFast:  options.FailFast,
		NowUnix:   time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("docgen: generating document: %w", err)
	}

	for _, s := range outcome.Statuses {
		if !s.Found {
			klog.Warningf("docgen: %s/%s/%s unavailable: %v", s.LangCode, s.ResourceType, s.BookCode, s.Err)
		}
	}

	htmlPath := outputHTMLPath(options.Destination, outcome.DocumentKey)
	attachments := []string{htmlPath}

	converter := convert.NewExecConverter()
	for kind, wanted := range map[convert.Kind]bool{
		convert.PDF:  req.GeneratePDF,
		convert.Epub: req.GenerateEpub,
		convert.Docx: req.GenerateDocx,
	} {
		if !wanted {
			continue
		}
		out, err := converter.Convert(ctx, kind, htmlPath, options.ConvertDir)
		if err != nil {
			klog.Errorf("docgen: converting to %s: %v", kind, err)
			continue
		}
		attachments = append(attachments, out)
	}

	if req.EmailAddress != "" {
		if options.SMTPHost == "" {
			klog.Warningf("docgen: email_address set but no --smtp-host configured, skipping delivery")
		} else {
			m := mailer.NewSMTPMailer(mailer.SMTPConfig{
				Host: options.SMTPHost, Port: options.SMTPPort,
				Username: options.SMTPUsername, Password: options.SMTPPassword, From: options.SMTPFrom,
			})
			if err := m.Send(req.EmailAddress, "Your document is ready", "Your requested document has been assembled.", attachments); err != nil {
				klog.Errorf("docgen: emailing result: %v", err)
			}
		}
	}

	fmt.Println(outcome.DocumentKey)
	return nil
}

func loadRequest(path string) (*api.DocumentRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var req api.DocumentRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("parsing request JSON: %w", err)
	}
	return &req, nil
}

func outputHTMLPath(outputDir, documentKey string) string {
	return filepath.Join(outputDir, documentKey+".html")
}
