package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/lanikai/audionet"
	"github.com/lanikai/audionet/internal/control"
	"github.com/lanikai/audionet/internal/discovery"
	"github.com/lanikai/audionet/internal/logging"
	"github.com/lanikai/audionet/internal/loop"
)

// Populated via -ldflags="-X ...". See Makefile.
var GitRevisionId string

var log = logging.DefaultLogger.WithTag("audionetd")

// Interval between traffic reports in the log.
const statsInterval = 10 * time.Second

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}

	if flagVersion {
		version()
		os.Exit(0)
	}

	mode, err := audionet.ParseMode(flagMode)
	if err != nil {
		log.Fatal(err)
	}

	channels := 1
	if flagStereo {
		channels = 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := audionet.New(audionet.Config{
		Stereo:     flagStereo,
		Address:    flagAddress,
		Port:       flagPort,
		SampleRate: flagRate,
		TOS:        flagTOS,
	})
	if err != nil {
		log.Fatal(err)
	}

	// The socket is released on its own loop, after the audio goroutine
	// lets go of it.
	netLoop := loop.New("net")
	defer netLoop.Close()
	sink.TransferOwnership(netLoop)
	defer sink.Close()

	if !sink.SelectMode(mode) {
		log.Fatalf("Cannot select mode %v", mode)
	}
	if mode == audionet.RealTime && !sink.IsRealTimeCapable() {
		log.Warn("RTP transport unavailable, nothing will be sent")
	}

	for _, d := range flagDestinations {
		e, err := parseEndpoint(d)
		if err != nil {
			log.Fatal(err)
		}
		sink.AddDestination(e.Address, e.Port)
	}

	if flagSDP != "" {
		desc := sink.SessionDescription(sink.Destination())
		if err := os.WriteFile(flagSDP, []byte(desc), 0644); err != nil {
			log.Fatal(err)
		}
	}

	ctrl := control.NewServer(32)
	if flagControl != "" {
		go serveControl(ctx, flagControl, ctrl)
	}
	if flagDiscover {
		go func() {
			err := discovery.Browse(ctx, discovery.DefaultService, 3*time.Second, func(e audionet.Endpoint) {
				if err := ctrl.Submit(control.Command{Op: "add", Address: e.Address, Port: e.Port}); err != nil {
					log.Warn("Discovered %v: %v", e, err)
				}
			})
			if err != nil {
				log.Error("Discovery stopped: %v", err)
			}
		}()
	}

	var src source
	if flagTone > 0 {
		src = newToneSource(flagTone, channels, flagRate)
	} else {
		src = newPCMSource(os.Stdin, channels, flagRate)
	}

	log.Info("Sending %v to %v", sink.Mode(), sink.Destination())
	if err := stream(ctx, src, sink, ctrl); err != nil {
		log.Error("%v", err)
	}
	log.Info("Stopped after %+v", sink.Stats())
}

// stream copies frames from src to sink until src is exhausted or ctx is done.
// Control commands are applied between frames.
func stream(ctx context.Context, src source, sink *audionet.Sink, ctrl *control.Server) error {
	lastReport := time.Now()
	for {
		frame, err := src.ReadFrame(ctx)
		if err == io.EOF || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read audio")
		}

		if n := ctrl.Apply(sink); n > 0 {
			log.Info("Applied %d control commands, destinations %v", n, sink.Destinations())
		}

		if err := sink.WriteFrame(frame); err != nil {
			return err
		}

		if time.Since(lastReport) >= statsInterval {
			lastReport = time.Now()
			st := sink.Stats()
			log.Debug("%d RTP packets, %d payload bytes", st.Packets, st.PayloadBytes)
		}
	}
}

func serveControl(ctx context.Context, addr string, ctrl *control.Server) {
	mux := http.NewServeMux()
	mux.Handle("/control", ctrl)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Info("Control listening on ws://%s/control", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Control server: %v", err)
	}
}

func parseEndpoint(s string) (audionet.Endpoint, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return audionet.Endpoint{}, errors.Wrapf(err, "destination '%s'", s)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil || p == 0 {
		return audionet.Endpoint{}, errors.Errorf("destination '%s': bad port", s)
	}
	return audionet.Endpoint{Address: host, Port: uint16(p)}, nil
}
