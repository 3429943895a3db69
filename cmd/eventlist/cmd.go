// This package is a binary for listing declared and sent ONVIF events from an
// Axis device.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.viam.com/rdk/logging"

	"github.com/camtools/onvifevents"
	"github.com/camtools/onvifevents/device"
)

var logger = logging.NewLogger("eventlist")

var (
	auth       string
	user       string
	password   string
	ip         string
	httpProxy  string
	httpsProxy string
	outDir     string
	debug      bool

	pullSeconds int
)

var rootCmd = &cobra.Command{
	Use:   "eventlist",
	Short: "Get lists of ONVIF events from an Axis device",
	Long: `eventlist talks to the ONVIF event service of an Axis device.

getlist fetches the events the device declares support for.
getsent opens a pull-point subscription, waits, and fetches the events that
actually fired in that window.

Both commands require an ONVIF user to be registered on the device and those
user credentials passed to the call.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logger.SetLevel(logging.DEBUG)
		}
		// A .env file can carry credentials out of shell history.
		if err := godotenv.Load(); err == nil {
			if v, ok := os.LookupEnv("ONVIF_USER"); ok && !cmd.Flags().Changed("user") {
				user = v
			}
			if v, ok := os.LookupEnv("ONVIF_PASSWORD"); ok && !cmd.Flags().Changed("password") {
				password = v
			}
		}
	},
}

var getListCmd = &cobra.Command{
	Use:   "getlist",
	Short: "Get list of declared events from ONVIF API",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession(0)
		if err != nil {
			return err
		}
		return session.ListDeclaredEvents(cmd.Context())
	},
}

var getSentCmd = &cobra.Command{
	Use:   "getsent",
	Short: "Get list of sent events from ONVIF API",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession(time.Duration(pullSeconds) * time.Second)
		if err != nil {
			return err
		}
		return session.ListSentEvents(cmd.Context())
	},
}

func newSession(pullWindow time.Duration) (*onvifevents.Session, error) {
	dev, err := device.New(device.Params{
		IP:         ip,
		Auth:       device.ParseAuthMethod(auth),
		Username:   user,
		Password:   password,
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
	}, logger)
	if err != nil {
		return nil, err
	}

	var formatter onvifevents.Formatter
	if xmllint := onvifevents.NewXMLLintFormatter(); xmllint.Available() {
		formatter = xmllint
	} else {
		logger.Debug("xmllint not found on PATH, formatting in process")
		formatter = &onvifevents.EtreeFormatter{}
	}
	sink := onvifevents.NewSink(outDir, formatter, logger)

	return onvifevents.NewSession(dev, sink, pullWindow, logger), nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&auth, "auth", "a", "digest", "Authentication method: basic, digest")
	pf.StringVarP(&user, "user", "u", "root", "ONVIF user name on device")
	pf.StringVarP(&password, "password", "p", "pass", "Password for ONVIF user on device")
	pf.StringVarP(&ip, "ip", "i", "192.168.0.90", "IP-address of Axis device")
	pf.StringVar(&httpProxy, "httpproxy", "", "Optional http proxy")
	pf.StringVar(&httpsProxy, "httpsproxy", "", "Optional https proxy")
	pf.StringVar(&outDir, "out-dir", ".", "Directory to write artifact files to")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")

	getSentCmd.Flags().IntVarP(&pullSeconds, "time", "t", 10, "Time, in seconds, for fetching events")

	rootCmd.AddCommand(getListCmd, getSentCmd)
}

func main() {
	if err := realMain(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func realMain() error {
	return rootCmd.ExecuteContext(context.Background())
}
