package cmd

import (
	"fmt"
	u "net/url"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockmirror/lockmirror/internal/utils"
)

var (
	destDir       string
	workers       int
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	indexToken    string
	s3Profile     string
	debug         bool
	quiet         bool
)

var globalHTTPConfig utils.HTTPClientConfig

var LockmirrorVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "lockmirror",
	Short:   "Lockmirror populates an offline mirror of the exact packages pinned in a lockfile",
	Version: LockmirrorVersion,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
		// Check if proxy URL contains auth
		parsedProxy, err := u.Parse(proxyURL)
		if err == nil && parsedProxy.User != nil && proxyUsername == "" {
			proxyUsername = parsedProxy.User.Username()
			if password, set := parsedProxy.User.Password(); set {
				proxyPassword = password
			}
			// Remove auth from URL to send in clientConfig
			parsedProxy.User = nil
			proxyURL = parsedProxy.String()
		}
		globalHTTPConfig = utils.HTTPClientConfig{
			Timeout:       timeout,
			KATimeout:     kaTimeout,
			ProxyURL:      proxyURL,
			ProxyUsername: proxyUsername,
			ProxyPassword: proxyPassword,
			UserAgent:     userAgent,
			Headers:       utils.ParseHeaderArgs(headers),
			IndexToken:    indexToken,
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&destDir, "dest", "d", "./packages", "Destination directory for mirrored artifacts")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Number of parallel downloads")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().StringVar(&indexToken, "index-token", "", "Bearer token for authenticated package indexes")
	rootCmd.PersistentFlags().StringVar(&s3Profile, "s3-profile", "default", "AWS profile for s3:// artifact sources")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Disable the live progress display")

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newCleanCmd())
}
