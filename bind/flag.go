// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bind binds the relay configuration structs to command line flags.
package bind

import (
	"net/url"
	"os"

	"github.com/mmatczuk/anyflag"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/301st/relay"
	"github.com/301st/relay/httplog"
	"github.com/301st/relay/log"
)

func ConfigFile(fs *pflag.FlagSet, configFile *string) {
	fs.StringVarP(configFile,
		"config-file", "c", *configFile, "<path>"+
			"Configuration file to load options from. "+
			"The supported formats are: JSON, YAML, TOML, HCL, and Java properties. "+
			"The file format is determined by the file extension, if not specified the default format is YAML. "+
			"The following precedence order of configuration sources is used: command flags, environment variables, config file, default values. ")
}

func HTTPServerConfig(fs *pflag.FlagSet, cfg *relay.HTTPServerConfig, prefix string, schemes ...relay.Scheme) {
	namePrefix := prefix
	if namePrefix != "" {
		namePrefix += "-"
	}

	fs.StringVar(&cfg.Addr,
		namePrefix+"address", cfg.Addr, "<host:port>"+
			"The server address to listen on. "+
			"If the host is empty, the server will listen on all available interfaces. ")

	if schemes == nil {
		schemes = []relay.Scheme{
			relay.HTTPScheme,
			relay.HTTPSScheme,
		}
	}

	if len(schemes) > 1 {
		fs.Var(anyflag.NewValue[relay.Scheme](cfg.Protocol, &cfg.Protocol,
			anyflag.EnumParser[relay.Scheme](schemes...)),
			namePrefix+"protocol", "<http|https>"+
				"The server protocol. ")

		fs.StringVar(&cfg.CertFile,
			namePrefix+"tls-cert-file", cfg.CertFile, "<path>"+
				"TLS certificate to use if the server protocol is https. ")

		fs.StringVar(&cfg.KeyFile,
			namePrefix+"tls-key-file", cfg.KeyFile, "<path>"+
				"TLS private key to use if the server protocol is https. ")
	}

	fs.DurationVar(&cfg.ReadHeaderTimeout,
		namePrefix+"read-header-timeout", cfg.ReadHeaderTimeout,
		"The amount of time allowed to read request headers.")

	fs.Int64Var(&cfg.ReadLimit,
		namePrefix+"read-limit", cfg.ReadLimit, "<bytes per second>"+
			"Global read rate limit for the server, zero means no limit. ")

	fs.Int64Var(&cfg.WriteLimit,
		namePrefix+"write-limit", cfg.WriteLimit, "<bytes per second>"+
			"Global write rate limit for the server, zero means no limit. ")

	httpLogModes := []httplog.Mode{
		httplog.None,
		httplog.ShortURL,
		httplog.URL,
		httplog.Headers,
		httplog.Errors,
	}
	fs.Var(anyflag.NewValue[httplog.Mode](cfg.LogHTTPMode, &cfg.LogHTTPMode, anyflag.EnumParser[httplog.Mode](httpLogModes...)),
		namePrefix+"log-http", "<none|short-url|url|headers|errors>"+
			"HTTP request and response logging mode. "+
			"By default, request line and headers are logged if response status code is greater than or equal to 500. "+
			"Setting this to none disables logging. ")
}

func BasicAuth(fs *pflag.FlagSet, ui **url.Userinfo) {
	fs.VarP(anyflag.NewValueWithRedact[*url.Userinfo](*ui, ui, relay.ParseUserinfo, relay.RedactUserinfo),
		"basic-auth", "", "<username:password>"+
			"Basic authentication credentials to protect the relay. "+
			"Username and password are URL decoded. "+
			"This allows you to pass in special characters such as @ by using %%40 or pass in a colon with %%3a. ")
}

func ProxyEndpoints(fs *pflag.FlagSet, endpoints *[]*relay.ProxyEndpoint) {
	fs.VarP(anyflag.NewSliceValueWithRedact[*relay.ProxyEndpoint](*endpoints, endpoints, relay.ParseProxyEndpoint, relay.RedactProxyEndpoint),
		"proxy", "x", "<username:password@host:port>"+
			"Upstream proxy endpoint to relay through. "+
			"The flag can be specified multiple times, the endpoints are tried in the order they are given. ")
}

func FetcherConfig(fs *pflag.FlagSet, cfg *relay.FetcherConfig) {
	fs.DurationVar(&cfg.Timeout,
		"proxy-timeout", cfg.Timeout,
		"The maximum amount of time a single relay attempt may take, "+
			"covering connecting to the proxy and reading the upstream response. ")

	fs.DurationVar(&cfg.DialTimeout,
		"proxy-dial-timeout", cfg.DialTimeout,
		"The maximum amount of time a dial to the proxy will wait for a connect to complete. ")

	fs.Int64Var(&cfg.MaxResponseBytes,
		"proxy-max-response-bytes", cfg.MaxResponseBytes,
		"The maximum size of the upstream response body. Zero means no limit. ")
}

func LogConfig(fs *pflag.FlagSet, cfg *log.Config) {
	fs.VarP(anyflag.NewValue[*os.File](nil, &cfg.File,
		relay.OpenFileParser(log.DefaultFileFlags, log.DefaultFileMode, log.DefaultDirMode)),
		"log-file", "", "<path>"+
			"Path to the log file, if empty, logs to stdout. ")

	logLevel := []log.Level{
		log.ErrorLevel,
		log.InfoLevel,
		log.DebugLevel,
	}
	fs.Var(anyflag.NewValue[log.Level](cfg.Level, &cfg.Level, anyflag.EnumParser[log.Level](logLevel...)),
		"log-level", "<error|info|debug>"+
			"Log level. ")
}

func MarkFlagHidden(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.Flags().MarkHidden(name); err != nil {
			panic(err)
		}
	}
}

func MarkFlagRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
