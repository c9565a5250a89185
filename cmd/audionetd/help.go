package main

import (
	"fmt"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagAddress      string
	flagPort         uint16
	flagMode         string
	flagStereo       bool
	flagRate         int
	flagDestinations []string
	flagTone         float64
	flagControl      string
	flagDiscover     bool
	flagTOS          int
	flagSDP          string
	flagHelp         bool
	flagVersion      bool
)

func init() {
	flag.StringVarP(&flagAddress, "address", "a", "127.0.0.1", "Destination address")
	flag.Uint16VarP(&flagPort, "port", "p", 9998, "Destination port")
	flag.StringVarP(&flagMode, "mode", "m", "udp", "Transport mode (udp or rtp)")
	flag.BoolVarP(&flagStereo, "stereo", "s", false, "Input is interleaved stereo")
	flag.IntVarP(&flagRate, "rate", "r", 48000, "Sample rate, in Hz")
	flag.StringArrayVarP(&flagDestinations, "dest", "d", nil, "Additional RTP destination")
	flag.Float64VarP(&flagTone, "tone", "", 0, "Send a test tone instead of reading stdin")
	flag.StringVarP(&flagControl, "control", "", "", "Control websocket listen address")
	flag.BoolVarP(&flagDiscover, "discover", "", false, "Add receivers found via mDNS")
	flag.IntVarP(&flagTOS, "tos", "", 0, "IP type of service")
	flag.StringVarP(&flagSDP, "sdp", "", "", "Write an SDP description of the RTP stream")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Stream 16-bit PCM audio to the network

Usage: audionetd [OPTION]...

Reads signed 16-bit little-endian samples from standard input and sends them
as raw UDP blocks or as RTP.

Destination:
  -a, --address=HOST     Destination address (default: 127.0.0.1)
  -p, --port=NUM         Destination port (default: 9998)
  -d, --dest=HOST:PORT   Additional RTP destination (repeatable)
      --discover         Add RTP receivers advertised via mDNS
      --tos=NUM          IP type of service, e.g. 184 for DSCP EF

Audio:
  -m, --mode=MODE        udp for raw 512-byte blocks, rtp for RTP (default: udp)
  -r, --rate=NUM         Sample rate, in Hz (default: 48000)
  -s, --stereo           Input is interleaved stereo
      --tone=HZ          Send a sine tone instead of reading standard input
      --sdp=FILE         Write an SDP file describing the RTP stream, for
                         receivers such as ffplay or VLC

Control:
      --control=ADDR     Accept mode and destination changes over a websocket
                         at ws://ADDR/control

Miscellaneous:
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits

Log levels are set with LOGLEVEL, e.g. LOGLEVEL=rtp=debug,info

Please report bugs to: aloha@lanikailabs.com`

// Help information is printed and program exits
func help() {
	r := color.New(color.FgRed)
	y := color.New(color.FgYellow)
	b := color.New(color.FgCyan)

	//                  _  _                     _
	//   __ _  _   _  __| |(_)  ___   _ __   ___ | |_
	//  / _` || | | |/ _` || | / _ \ | '_ \ / _ \| __|
	// | (_| || |_| | (_| || || (_) || | | |  __/| |_
	//  \__,_| \__,_|\__,_||_| \___/ |_| |_|\___| \__|

	// Line 1
	r.Printf("                 ")
	y.Printf(" _ ")
	b.Printf(" _ ")
	r.Printf("                    ")
	y.Println(" _   ")

	// Line 2
	r.Printf("   __ _  _   _  _")
	y.Printf("_| |")
	b.Printf("(_)")
	r.Printf("  ___   _ __   ___ ")
	y.Println("| |_ ")

	// Line 3
	r.Printf("  / _` || | | |/ ")
	y.Printf("_` |")
	b.Printf("| |")
	r.Printf(" / _ \\ | '_ \\ / _ \\")
	y.Println("| __|")

	// Line 4
	r.Printf(" | (_| || |_| | (")
	y.Printf("_| |")
	b.Printf("| |")
	r.Printf("| (_) || | | |  __/")
	y.Println("| |_ ")

	// Line 5
	r.Printf("  \\__,_| \\__,_|\\_")
	y.Printf("_,_|")
	b.Printf("|_|")
	r.Printf(" \\___/ |_| |_|\\___|")
	y.Println(" \\__|")

	fmt.Println(helpString)
}

// version displays information and exits successfully (GNU convention)
func version() {
	fmt.Println("audionetd", GitRevisionId)
	fmt.Println("Copyright 2019 Lanikai Labs LLC. All rights reserved.")
}
