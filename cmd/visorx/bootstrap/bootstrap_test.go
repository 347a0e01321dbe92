package bootstrap

import (
	"context"
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/papercomputeco/visorx/pkg/config"
	"github.com/papercomputeco/visorx/pkg/conversation"
	"github.com/papercomputeco/visorx/pkg/llm"
	"github.com/papercomputeco/visorx/pkg/llm/mock"
)

var _ = Describe("Bootstrap", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("LoadConfig", func() {
		It("applies overrides before validating", func() {
			if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("API_KEY") != "" {
				Skip("a real credential is set in the environment")
			}

			_, err := LoadConfig("", nil)
			Expect(errors.Is(err, config.ErrMissingAPIKey)).To(BeTrue())

			cfg, err := LoadConfig("", func(c *config.Config) { c.UseMock = true })
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.UseMock).To(BeTrue())
		})
	})

	Describe("NewProvider", func() {
		It("returns the echo provider in mock mode", func() {
			cfg := config.Default()
			cfg.UseMock = true

			p, err := NewProvider(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeAssignableToTypeOf(&mock.Provider{}))
		})
	})

	Describe("NewController", func() {
		It("builds a controller that starts with the localized greeting", func() {
			cfg := config.Default()
			cfg.UseMock = true
			cfg.Locale = "en"

			ctrl, err := NewController(ctx, cfg, prometheus.NewRegistry(), zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			Expect(ctrl.State()).To(Equal(conversation.Initializing))

			Expect(ctrl.Start(ctx)).To(Succeed())
			msgs := ctrl.Messages()
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Role).To(Equal(llm.RoleModel))
			Expect(msgs[0].Content).To(HavePrefix("Hi, I'm VisorX"))
		})

		It("fails when metrics are registered twice", func() {
			cfg := config.Default()
			cfg.UseMock = true
			reg := prometheus.NewRegistry()

			_, err := NewController(ctx, cfg, reg, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			_, err = NewController(ctx, cfg, reg, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})
	})
})
