// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

//go:build integration

package host_test

import (
	"context"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/emberclient/emberclient/internal/host"
	"github.com/emberclient/emberclient/pkg/sdk"
	"github.com/emberclient/emberclient/plugins/echo"
)

// memorySink collects chat lines written by the host.
type memorySink struct {
	mu    sync.Mutex
	lines []string
}

func (s *memorySink) WriteChatLine(sender, _, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, sender+": "+text)
}

func (s *memorySink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// weatherPlugin is a manifest-backed plugin answering weather capabilities.
type weatherPlugin struct {
	city string
}

func (p *weatherPlugin) Query(id string, out any) bool {
	if id == "weather.city" {
		if s, ok := out.(*string); ok {
			*s = p.city
			return true
		}
	}
	return false
}

const weatherManifest = `
name: weather
version: 1.0.0
sdk: "1.0"
capabilities:
  - weather.*
`

var _ = Describe("Plugin lifecycle", func() {
	var (
		sink *memorySink
		h    *host.Host
	)

	BeforeEach(func() {
		sink = &memorySink{}
		h = host.New(host.WithChatSink(sink))
	})

	Describe("manifest registration", func() {
		It("publishes the plugin's capability patterns", func() {
			p := &weatherPlugin{city: "Bergen"}
			Expect(h.RegisterPluginManifest(p, []byte(weatherManifest))).To(BeTrue())

			city, ok := sdk.QueryAs[string](h, "weather.city")
			Expect(ok).To(BeTrue())
			Expect(city).To(Equal("Bergen"))
		})

		It("withdraws capabilities when the plugin unregisters", func() {
			p := &weatherPlugin{city: "Bergen"}
			Expect(h.RegisterPluginManifest(p, []byte(weatherManifest))).To(BeTrue())
			Expect(h.UnregisterPlugin(p)).To(BeTrue())

			_, ok := sdk.QueryAs[string](h, "weather.city")
			Expect(ok).To(BeFalse())
		})

		It("rejects a manifest built against another SDK major", func() {
			p := &weatherPlugin{}
			bad := []byte("name: weather\nversion: 1.0.0\nsdk: \"2.0\"\n")
			Expect(h.RegisterPluginManifest(p, bad)).To(BeFalse())
		})
	})

	Describe("cascade unloading", func() {
		It("fires module unloads before the plugin unload", func() {
			var order []string
			recorder := sdk.ListenTo(func(_ *sdk.ModuleEvent) {
				order = append(order, "module")
			})
			recorder2 := sdk.ListenTo(func(_ *sdk.PluginEvent) {
				order = append(order, "plugin")
			})
			Expect(h.AddEventListener(sdk.EventModuleUnload, recorder)).To(BeTrue())
			Expect(h.AddEventListener(sdk.EventPluginUnload, recorder2)).To(BeTrue())

			p := &weatherPlugin{}
			m := &weatherPlugin{}
			Expect(h.RegisterPlugin(p, "weather")).To(BeTrue())
			Expect(h.RegisterModule(p, m)).To(BeTrue())

			Expect(h.UnregisterPlugin(p)).To(BeTrue())
			Expect(order).To(Equal([]string{"module", "plugin"}))
		})
	})

	Describe("chat pipeline", func() {
		It("runs submitted chat through listening plugins", func() {
			p := echo.New()
			Expect(p.Attach(h)).To(BeTrue())

			message, ok := h.SubmitChat("!echo integration")
			Expect(ok).To(BeTrue())
			Expect(message).To(Equal("!echo integration"))
			Expect(sink.snapshot()).To(ContainElement("client: integration"))
		})

		It("lets a listener rewrite the logged line", func() {
			censor := sdk.ListenTo(func(e *sdk.ChatLogEvent) {
				e.DisplayOverride.Set("[redacted]")
			})
			Expect(h.AddEventListener(sdk.EventChatLog, censor)).To(BeTrue())

			Expect(h.QueueLogChat("secret plans")).To(BeTrue())
			Expect(sink.snapshot()).To(ContainElement("client: [redacted]"))
			Expect(sink.snapshot()).NotTo(ContainElement("client: secret plans"))
		})
	})

	Describe("enumeration", func() {
		It("snapshots plugins registered from concurrent goroutines", func() {
			const n = 8
			plugins := make([]*weatherPlugin, n)
			var wg sync.WaitGroup
			for i := range plugins {
				plugins[i] = &weatherPlugin{}
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer GinkgoRecover()
					name := fmt.Sprintf("weather-%d", i)
					Expect(h.RegisterPlugin(plugins[i], name)).To(BeTrue())
				}(i)
			}
			wg.Wait()

			snapshot, err := h.PluginsSnapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot).To(HaveLen(n))
		})
	})

	Describe("managed strings", func() {
		It("round-trips plugin updates through the host cell", func() {
			handle := h.NewManagedString("initial")

			got, ok := h.GetMCStr(handle)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal("initial"))

			same, ok := h.SetMCStr(handle, "updated")
			Expect(ok).To(BeTrue())
			Expect(same).To(Equal(handle))

			got, ok = h.GetMCStr(handle)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal("updated"))
		})
	})
})
