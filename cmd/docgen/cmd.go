// SPDX-License-Identifier: Apache-2.0

// Package docgen is the CLI entrypoint for the document assembler: it
// builds a DocumentRequest from a JSON file and flags, runs the core
// generation pipeline, and optionally converts and emails the result.
package docgen

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// DefaultConfigFileName is the configuration filename under the
// bibleassembler home folder.
const DefaultConfigFileName = "config"

// BibleAssemblerHomeDir is the home location under $HOME holding a
// default config file and catalog cache.
const BibleAssemblerHomeDir = ".bibleassembler"

// Options holds every flag/config value NewCommand's RunE needs.
type Options struct {
	RequestPath  string `mapstructure:"request"`
	CatalogPath  string `mapstructure:"catalog"`
	CacheDir     string `mapstructure:"cache-dir"`
	Destination  string `mapstructure:"destination"`
	Workers      int    `mapstructure:"workers"`
	FailFast     bool   `mapstructure:"fail-fast"`
	CatalogTTL   int    `mapstructure:"catalog-ttl-seconds"`
	ConvertDir   string `mapstructure:"convert-destination"`
	Watch        bool   `mapstructure:"watch"`
	SMTPHost     string `mapstructure:"smtp-host"`
	SMTPPort     int    `mapstructure:"smtp-port"`
	SMTPUsername string `mapstructure:"smtp-username"`
	SMTPPassword string `mapstructure:"smtp-password"`
	SMTPFrom     string `mapstructure:"smtp-from"`
	GitHubToken  string `mapstructure:"github-token"`
}

var vip *viper.Viper

// NewCommand creates the docgen root command.
func NewCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docgen",
		Short: "Assemble a translation document from catalog resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			options, err := NewOptions()
			if err != nil {
				return err
			}
			if options.Watch {
				return watchAndRun(ctx, options)
			}
			return exec(ctx, options)
		},
	}

	Configure(cmd)

	cmd.AddCommand(NewVersionCmd())

	klog.InitFlags(nil)

	return cmd
}

// Configure wires cobra flags to a package-level viper instance.
func Configure(command *cobra.Command) {
	vip = viper.New()
	configureFlags(command)
	configureConfigFile()
}

func configureFlags(command *cobra.Command) {
	command.Flags().StringP("request", "r", "",
		"Path to a JSON file holding the DocumentRequest to assemble.")
	_ = command.MarkFlagRequired("request")
	_ = vip.BindPFlag("request", command.Flags().Lookup("request"))

	command.Flags().StringP("catalog", "c", "",
		"Path to the catalog JSON document.")
	_ = command.MarkFlagRequired("catalog")
	_ = vip.BindPFlag("catalog", command.Flags().Lookup("catalog"))

	command.Flags().StringP("destination", "d", ".",
		"Output directory for the assembled HTML document.")
	_ = vip.BindPFlag("destination", command.Flags().Lookup("destination"))

	command.Flags().String("convert-destination", "",
		"Output directory for converted PDF/ePub/DOCX files. Defaults to --destination.")
	_ = vip.BindPFlag("convert-destination", command.Flags().Lookup("convert-destination"))

	homeDir := ""
	if userHomeDir, err := os.UserHomeDir(); err == nil {
		homeDir = filepath.Join(userHomeDir, BibleAssemblerHomeDir, "cache")
	}
	command.Flags().String("cache-dir", homeDir,
		"Cache directory for provisioned resources.")
	_ = vip.BindPFlag("cache-dir", command.Flags().Lookup("cache-dir"))

	command.Flags().Int("workers", 4,
		"Number of parallel workers per fetch/parse pass.")
	_ = vip.BindPFlag("workers", command.Flags().Lookup("workers"))

	command.Flags().Bool("fail-fast", false,
		"Fail-fast vs fault-tolerant operation.")
	_ = vip.BindPFlag("fail-fast", command.Flags().Lookup("fail-fast"))

	command.Flags().Int("catalog-ttl-seconds", 300,
		"Catalog refresh interval, in seconds.")
	_ = vip.BindPFlag("catalog-ttl-seconds", command.Flags().Lookup("catalog-ttl-seconds"))

	command.Flags().String("smtp-host", "", "SMTP host used to email the finished document.")
	_ = vip.BindPFlag("smtp-host", command.Flags().Lookup("smtp-host"))

	command.Flags().Int("smtp-port", 587, "SMTP port.")
	_ = vip.BindPFlag("smtp-port", command.Flags().Lookup("smtp-port"))

	command.Flags().String("smtp-username", "", "SMTP auth username.")
	_ = vip.BindPFlag("smtp-username", command.Flags().Lookup("smtp-username"))

	command.Flags().String("smtp-password", "", "SMTP auth password.")
	_ = vip.BindPFlag("smtp-password", command.Flags().Lookup("smtp-password"))

	command.Flags().String("smtp-from", "", "SMTP From address.")
	_ = vip.BindPFlag("smtp-from", command.Flags().Lookup("smtp-from"))

	command.Flags().Bool("watch", false,
		"Keep running, regenerating whenever --request or --catalog changes.")
	_ = vip.BindPFlag("watch", command.Flags().Lookup("watch"))

	command.Flags().String("github-token", "",
		"OAuth2 access token used to authenticate provisioning requests against github.com.")
	_ = vip.BindPFlag("github-token", command.Flags().Lookup("github-token"))
}

func configureConfigFile() {
	vip.AutomaticEnv()
	cfgFile := os.Getenv("BIBLEASSEMBLER_CONFIG")
	if cfgFile == "" {
		userHomeDir, _ := os.UserHomeDir()
		cfgFile = filepath.Join(userHomeDir, BibleAssemblerHomeDir, DefaultConfigFileName)
		if _, err := os.Lstat(cfgFile); os.IsNotExist(err) {
			return
		}
	}
	vip.AddConfigPath(filepath.Dir(cfgFile))
	vip.SetConfigName(filepath.Base(cfgFile))
	vip.SetConfigType("yaml")
	if err := vip.ReadInConfig(); err != nil {
		klog.Warningf("non-fatal error loading configuration file %s, ignoring: %v", cfgFile, err)
		return
	}
	klog.Infof("configuration file %s will be used", cfgFile)
}

// NewOptions builds an Options from flags and the optional config file,
// flags taking precedence.
func NewOptions() (*Options, error) {
	loaded := &Options{}
	if err := vip.Unmarshal(loaded); err != nil {
		return nil, err
	}
	if loaded.ConvertDir == "" {
		loaded.ConvertDir = loaded.Destination
	}
	return loaded, nil
}
