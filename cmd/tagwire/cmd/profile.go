package cmd

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"

	"github.com/rawbytedev/tagwire"
)

func newProfileCmd(a *app) *cobra.Command {
	var (
		in, from, memProfile, cpuProfile, serve string
		iterations                              int
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Run an encode/decode loop under the profiler",
		Long: `Profile encodes and decodes the input document --iterations times and
writes heap and CPU profiles. With --serve the pprof HTTP endpoints stay up
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			doc, err := readDocument(data, from)
			if err != nil {
				return err
			}
			v, err := tagwire.FromGo(doc)
			if err != nil {
				return fmt.Errorf("unsupported document: %w", err)
			}
			if serve != "" {
				go func() {
					a.log.Error("pprof server stopped", "err", http.ListenAndServe(serve, nil))
				}()
			}
			if cpuProfile != "" {
				f, err := os.Create(cpuProfile)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := pprof.StartCPUProfile(f); err != nil {
					return err
				}
				defer pprof.StopCPUProfile()
			}
			if memProfile != "" {
				runtime.MemProfileRate = 1
			}

			res, err := runLoop(a.codec, v, iterations)
			if err != nil {
				return err
			}
			a.log.Info("profile finished",
				"iterations", iterations,
				"bytes", res.size,
				"encode", res.encode.String(),
				"decode", res.decode.String())
			fmt.Fprintf(cmd.OutOrStdout(), "%d iterations, %d bytes, encode %s/op, decode %s/op\n",
				iterations, res.size, perOp(res.encode, iterations), perOp(res.decode, iterations))

			if memProfile != "" {
				f, err := os.Create(memProfile)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := pprof.WriteHeapProfile(f); err != nil {
					return err
				}
			}
			if serve != "" {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				a.log.Info("serving pprof", "addr", serve)
				<-ctx.Done()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, - for stdin")
	cmd.Flags().StringVar(&from, "from", "json", "input format: json, yaml or cbor")
	cmd.Flags().IntVar(&iterations, "iterations", 10000, "encode/decode round trips")
	cmd.Flags().StringVar(&memProfile, "memprofile", "", "write a heap profile to this file")
	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	cmd.Flags().StringVar(&serve, "serve", "", "serve net/http/pprof on this address, e.g. localhost:6060")
	return cmd
}

type loopResult struct {
	size           int
	encode, decode time.Duration
}

func perOp(d time.Duration, n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return d / time.Duration(n)
}

func runLoop(c *tagwire.Codec, v tagwire.Value, n int) (loopResult, error) {
	var res loopResult
	for i := 0; i < n; i++ {
		start := time.Now()
		data, err := c.Encode(v)
		if err != nil {
			return res, err
		}
		mid := time.Now()
		if _, err := c.Decode(data); err != nil {
			return res, err
		}
		res.encode += mid.Sub(start)
		res.decode += time.Since(mid)
		res.size = len(data)
	}
	return res, nil
}
