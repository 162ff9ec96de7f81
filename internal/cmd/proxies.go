package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jimezsa/jobwatch/internal/config"
	"github.com/jimezsa/jobwatch/internal/export"
	"github.com/jimezsa/jobwatch/internal/network"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Validate proxies against a target URL."`
}

type ProxyCheckCmd struct {
	Target  string `help:"Target URL." default:"https://www.google.com"`
	Timeout int    `help:"Timeout in seconds." default:"15"`
}

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(ctx.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	results := make([]export.ProxyCheck, 0, len(proxies))
	for _, proxy := range proxies {
		results = append(results, p.check(ctx, proxy))
	}
	return writeProxyResults(ctx, results)
}

func (p *ProxyCheckCmd) check(ctx *Context, proxy string) export.ProxyCheck {
	result := export.ProxyCheck{Proxy: proxy, Status: "error"}

	rotator, err := network.NewRotator([]string{proxy}, 5*time.Minute)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	client, err := network.NewClient(network.Options{
		TimeoutSeconds: p.Timeout,
		UserAgent:      ctx.Config.UserAgent,
		Rotator:        rotator,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	reqCtx, cancel := context.WithTimeout(ctx.ctx(), time.Duration(p.Timeout)*time.Second)
	defer cancel()

	start := time.Now()
	resp, err := client.Get(reqCtx, p.Target)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	_ = resp.Body.Close()

	result.LatencyMS = time.Since(start).Milliseconds()
	result.Status = fmt.Sprintf("%d", resp.StatusCode)
	return result
}

func writeProxyResults(ctx *Context, results []export.ProxyCheck) error {
	return emit(ctx, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteProxyChecks(w, results, format, opts)
	})
}
