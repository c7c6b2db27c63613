// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// load implements the load tests.
package load_test

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/holiman/uint256"
	log "github.com/inconshreveable/log15"
	ginkgo "github.com/onsi/ginkgo/v2"
	"github.com/onsi/ginkgo/v2/formatter"
	"github.com/onsi/gomega"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/diamondvm/client"
	"github.com/ava-labs/diamondvm/deployment"
	"github.com/ava-labs/diamondvm/diamondvm"
	"github.com/ava-labs/diamondvm/ledger"
	"github.com/ava-labs/diamondvm/service"
)

func TestLoad(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "diamondvm load test suites")
}

var (
	requestTimeout time.Duration

	readers      int
	terminalDays uint64
)

func init() {
	flag.DurationVar(
		&requestTimeout,
		"request-timeout",
		120*time.Second,
		"timeout of the whole load run",
	)

	flag.IntVar(
		&readers,
		"readers",
		8,
		"number of concurrent readers",
	)

	flag.Uint64Var(
		&terminalDays,
		"terminal-days",
		365,
		"number of days to record before quitting",
	)
}

const dailyPrice = 1000

var (
	owner = ids.ShortID{1}

	d      *diamondvm.Diamond
	server *httptest.Server
	cli    client.Client
)

var _ = ginkgo.BeforeSuite(func() {
	var err error
	d, err = diamondvm.New(memdb.New(), owner, nil)
	gomega.Expect(err).Should(gomega.BeNil())
	_, err = deployment.Deploy(context.Background(), d, owner)
	gomega.Expect(err).Should(gomega.BeNil())

	handler, err := service.NewHandler(service.New(d))
	gomega.Expect(err).Should(gomega.BeNil())
	mux := http.NewServeMux()
	mux.Handle(service.Endpoint, handler)
	server = httptest.NewServer(mux)
	cli = client.New(server.URL)
	outf("{{blue}}diamond RPC:{{/}} %q\n", server.URL)
})

var _ = ginkgo.AfterSuite(func() {
	outf("{{red}}shutting down node{{/}}\n")
	server.Close()
	err := d.Close()
	gomega.Expect(err).Should(gomega.BeNil())
	log.Warn("node shutdown result", "err", err)
})

var _ = ginkgo.Describe("[SetDayPrice]", func() {
	ginkgo.It("records days while readers average them", func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		g, gctx := errgroup.WithContext(ctx)

		start := ledger.Date(2020, time.January, 1)
		price := new(uint256.Int).SetUint64(dailyPrice)
		g.Go(func() error {
			defer ginkgo.GinkgoRecover()

			began := time.Now()
			for i := uint64(0); i < terminalDays; i++ {
				err := cli.SetDayPrice(gctx, owner, start+i*ledger.SecondsPerDay, price)
				gomega.Ω(err).Should(gomega.BeNil())
			}
			log.Info("performance", "days", terminalDays,
				"avg writes/s", float64(terminalDays)/time.Since(began).Seconds(),
			)
			log.Info("exiting at terminal day")
			cancel()
			return nil
		})

		for i := 0; i < readers; i++ {
			g.Go(func() error {
				defer ginkgo.GinkgoRecover()

				reads := 0
				for gctx.Err() == nil {
					last, err := cli.GetLastTimestamp(gctx)
					if err != nil || last == 0 {
						continue
					}
					// every recorded day has the same price, so any
					// consistent snapshot averages to it
					avg, err := cli.GetAveragePrice(gctx, start, last)
					if gctx.Err() != nil {
						break
					}
					gomega.Ω(err).Should(gomega.BeNil())
					gomega.Ω(avg.Uint64()).Should(gomega.Equal(uint64(dailyPrice)))
					reads++
				}
				log.Debug("reader done", "reads", reads)
				return nil
			})
		}
		log.Warn("exiting load loop", "err", g.Wait())

		last, err := cli.GetLastTimestamp(context.Background())
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(last).Should(gomega.Equal(start + (terminalDays-1)*ledger.SecondsPerDay))
	})
})

// Outputs to stdout.
//
// e.g.,
//
//	Out("{{green}}{{bold}}hi there %q{{/}}", "aa")
//	Out("{{magenta}}{{bold}}hi therea{{/}} {{cyan}}{{underline}}b{{/}}")
//
// ref.
// https://github.com/onsi/ginkgo/blob/v2.0.0/formatter/formatter.go#L52-L73
func outf(format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(formatter.ColorableStdOut, s)
}
