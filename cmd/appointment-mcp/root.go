// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/NarenAdithya14/ocr-appointments/internal/appointment"
	"github.com/NarenAdithya14/ocr-appointments/internal/appointment/extract"
	"github.com/NarenAdithya14/ocr-appointments/internal/config"
	"github.com/NarenAdithya14/ocr-appointments/internal/intake"
	"github.com/NarenAdithya14/ocr-appointments/internal/logging"
	"github.com/NarenAdithya14/ocr-appointments/internal/ocr"
)

// Version is overridden with -ldflags at build time.
var Version = "dev"

// app is everything a subcommand needs, built once per invocation from the
// loaded configuration.
type app struct {
	cfg         config.Config
	logger      *slog.Logger
	closer      io.Closer
	departments *extract.DepartmentTable
	pipeline    *appointment.Pipeline
	intake      *intake.Service
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	a := &app{}
	var configFile string

	root := &cobra.Command{
		Use:          "appointment-mcp",
		Short:        "Turn appointment requests in text or images into structured appointments",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init(v, configFile)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to a YAML config file")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("timezone", "Asia/Kolkata", "IANA timezone appointments are expressed in")
	flags.Int("default-year", 2023, "year assumed for dates written without one")
	flags.String("ocr-endpoint", "", "URL of the OCR service used for images")
	flags.String("departments", "", "YAML file replacing the built-in department table")

	bind(v, flags.Lookup("log-level"), config.KeyLogLevel)
	bind(v, flags.Lookup("log-format"), config.KeyLogFormat)
	bind(v, flags.Lookup("timezone"), config.KeyTimezone)
	bind(v, flags.Lookup("default-year"), config.KeyDefaultYear)
	bind(v, flags.Lookup("ocr-endpoint"), config.KeyOCREndpoint)
	bind(v, flags.Lookup("departments"), config.KeyDepartmentsFile)

	root.AddCommand(
		newServeCmd(a),
		newParseCmd(a),
		newImageCmd(a),
		newDepartmentsCmd(a),
		newVersionCmd(),
	)
	return root
}

func bind(v *viper.Viper, flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
	}
}

func (a *app) init(v *viper.Viper, configFile string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}

	closer := logging.Init(logging.Options{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	logger := slog.Default()

	table := extract.DefaultDepartments()
	if cfg.DepartmentsFile != "" {
		if table, err = extract.LoadDepartments(cfg.DepartmentsFile); err != nil {
			_ = closer.Close()
			return err
		}
	}

	p := appointment.NewPipeline(
		extract.NewNoiseNormalizer(),
		extract.NewRuleExtractor(table),
		appointment.WithNormalizer(appointment.NewNormalizer(cfg.Location, cfg.DefaultYear)),
		appointment.WithLogger(logger),
	)

	opts := []intake.Option{
		intake.WithMaxImageBytes(cfg.Intake.MaxImageBytes),
		intake.WithStrictOCR(cfg.OCR.Strict),
		intake.WithOCRTimeout(cfg.OCR.Timeout),
		intake.WithLogger(logger),
	}
	if cfg.OCR.Endpoint != "" {
		opts = append(opts, intake.WithEngine(ocr.NewHTTPEngine(cfg.OCR.Endpoint,
			ocr.WithToken(cfg.OCR.Token),
			ocr.WithTimeout(cfg.OCR.Timeout),
			ocr.WithLogger(logger),
		)))
	}

	*a = app{
		cfg:         cfg,
		logger:      logger,
		closer:      closer,
		departments: table,
		pipeline:    p,
		intake:      intake.New(p, opts...),
	}
	logger.Debug("configuration loaded", "timezone", cfg.Timezone, "default_year", cfg.DefaultYear, "ocr", cfg.OCR.Endpoint != "")
	return nil
}
