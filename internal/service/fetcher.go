package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"docsynth/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const fetchConcurrency = 4

// Page 一个文档地址抓取后的纯文本摘录
type Page struct {
	URL  string
	Text string
	Err  error
}

// FileExcerpt 附件的文本摘录
type FileExcerpt struct {
	Name string
	Text string
}

// ErrBlockedHost 文档地址指向回环、内网或链路本地地址
var ErrBlockedHost = errors.New("禁止访问内部地址")

// 运营商级 NAT 段，netip 不把它算作 private
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

type Fetcher struct {
	http         *resty.Client
	strip        *bluemonday.Policy
	maxChars     int
	allowPrivate bool
	log          logrus.FieldLogger
}

func NewFetcher(cfg config.GeneratorConfig) *Fetcher {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	strip := bluemonday.StrictPolicy()
	strip.AddSpaceWhenStrippingTag(true)
	f := &Fetcher{
		strip:        strip,
		maxChars:     cfg.ExcerptChars,
		allowPrivate: cfg.AllowPrivateHosts,
		log:          logrus.WithField("component", "fetcher"),
	}

	dialer := &net.Dialer{Timeout: timeout}
	if !f.allowPrivate {
		// 解析后的真实地址在建连时再查一次，防止 DNS 重绑定绕过
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			ap, err := netip.ParseAddrPort(address)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrBlockedHost, address)
			}
			return checkAddr(ap.Addr())
		}
	}
	client := resty.New().
		SetTransport(&http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConnsPerHost:   fetchConcurrency,
		}).
		SetTimeout(timeout).
		SetRedirectPolicy(
			resty.FlexibleRedirectPolicy(5),
			resty.RedirectPolicyFunc(func(req *http.Request, _ []*http.Request) error {
				return f.checkURL(req.Context(), req.URL)
			}),
		).
		SetHeader("User-Agent", "docsynth/1.0")
	if cfg.MaxPageBytes > 0 {
		client.SetResponseBodyLimit(cfg.MaxPageBytes)
	}
	f.http = client
	return f
}

func checkAddr(addr netip.Addr) error {
	addr = addr.Unmap()
	if !addr.IsValid() || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() || addr.IsMulticast() ||
		sharedAddressSpace.Contains(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedHost, addr)
	}
	return nil
}

// checkURL 只接受 http/https，且主机解析出的每个地址都必须是公网地址
func (f *Fetcher) checkURL(ctx context.Context, u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("不支持的协议: %s", u.Scheme)
	}
	if f.allowPrivate {
		return nil
	}
	host := u.Hostname()
	if addr, err := netip.ParseAddr(host); err == nil {
		return checkAddr(addr)
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return fmt.Errorf("解析主机失败: %w", err)
	}
	for _, addr := range addrs {
		if err := checkAddr(addr); err != nil {
			return err
		}
	}
	return nil
}

// ParseURLs 每行一个地址，去掉首尾空白与空行
func ParseURLs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// FetchAll 并发抓取全部地址，结果顺序与输入一致。单个地址失败只记录在 Page.Err 中。
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Page {
	pages := make([]Page, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			pages[i] = f.fetch(gctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return pages
}

func (f *Fetcher) fetch(ctx context.Context, raw string) Page {
	page := Page{URL: raw}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		page.Err = fmt.Errorf("无法识别的地址: %s", raw)
		return page
	}
	if err := f.checkURL(ctx, u); err != nil {
		page.Err = fmt.Errorf("抓取失败: %w", err)
		f.log.WithError(err).WithField("url", raw).Warn("拒绝抓取文档地址")
		return page
	}

	resp, err := f.http.R().SetContext(ctx).Get(u.String())
	if err != nil {
		page.Err = fmt.Errorf("抓取失败: %w", err)
		f.log.WithError(err).WithField("url", raw).Warn("文档抓取失败")
		return page
	}
	if !resp.IsSuccess() {
		page.Err = fmt.Errorf("抓取失败: HTTP %d", resp.StatusCode())
		f.log.WithFields(logrus.Fields{"url": raw, "status": resp.StatusCode()}).Warn("文档抓取失败")
		return page
	}

	body := resp.String()
	if strings.Contains(resp.Header().Get("Content-Type"), "html") {
		body = f.ExtractText(body)
	}
	page.Text = truncateRunes(strings.TrimSpace(body), f.maxChars)
	return page
}

// ExtractText 去掉所有标签（含 script/style 内容），合并空白
func (f *Fetcher) ExtractText(doc string) string {
	text := html.UnescapeString(f.strip.Sanitize(doc))
	return strings.Join(strings.Fields(text), " ")
}

// ExcerptFile 文本文件取前 maxChars 个字符，二进制文件只记录大小
func ExcerptFile(name string, data []byte, maxChars int) FileExcerpt {
	if !utf8.Valid(data) {
		return FileExcerpt{Name: name, Text: fmt.Sprintf("(binary file, %d bytes)", len(data))}
	}
	return FileExcerpt{Name: name, Text: truncateRunes(strings.TrimSpace(string(data)), maxChars)}
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
