package conversation_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/visorx/pkg/chatclient"
	"github.com/papercomputeco/visorx/pkg/conversation"
	"github.com/papercomputeco/visorx/pkg/i18n"
	"github.com/papercomputeco/visorx/pkg/imageenc"
	"github.com/papercomputeco/visorx/pkg/llm"
	"github.com/papercomputeco/visorx/pkg/llm/mock"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

var _ = Describe("Controller", func() {
	var (
		ctx      context.Context
		provider *mock.Provider
		printer  *i18n.Printer
		ctrl     *conversation.Controller
	)

	newController := func() *conversation.Controller {
		client := chatclient.New(provider, "", printer.Sprintf(i18n.EmptyInput), zap.NewNop())
		return conversation.New(client, imageenc.NewEncoder(0), conversation.Options{Printer: printer})
	}

	BeforeEach(func() {
		ctx = context.Background()
		provider = mock.New()
		printer = i18n.NewPrinter("es")
		ctrl = newController()
	})

	Describe("Start", func() {
		It("starts initializing and rejects submissions until the session exists", func() {
			Expect(ctrl.State()).To(Equal(conversation.Initializing))
			Expect(ctrl.Loading()).To(BeTrue())

			_, err := ctrl.Submit(ctx, conversation.Submission{Text: "hola"})
			Expect(err).To(MatchError(conversation.ErrNotReady))
			Expect(provider.Sends()).To(Equal(0))
		})

		It("appends the greeting and becomes idle", func() {
			Expect(ctrl.Start(ctx)).To(Succeed())

			Expect(ctrl.State()).To(Equal(conversation.Idle))
			msgs := ctrl.Messages()
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Role).To(Equal(llm.RoleModel))
			Expect(msgs[0].Content).To(Equal(printer.Sprintf(i18n.Greeting)))
		})

		It("stays initializing when the session cannot be opened", func() {
			provider.StartErr = errors.New("API key not valid")

			err := ctrl.Start(ctx)
			Expect(err).To(MatchError(ContainSubstring("API key not valid")))
			Expect(ctrl.State()).To(Equal(conversation.Initializing))
			Expect(ctrl.Messages()).To(BeEmpty())
		})

		It("refuses to start twice", func() {
			Expect(ctrl.Start(ctx)).To(Succeed())
			Expect(ctrl.Start(ctx)).NotTo(Succeed())
		})
	})

	Describe("Submit", func() {
		BeforeEach(func() {
			Expect(ctrl.Start(ctx)).To(Succeed())
		})

		It("ignores blank submissions without a remote call", func() {
			before := len(ctrl.Messages())

			_, err := ctrl.Submit(ctx, conversation.Submission{Text: "  \n\t"})
			Expect(err).To(MatchError(conversation.ErrEmpty))
			Expect(err).To(MatchError(conversation.ErrRejected))

			Expect(ctrl.Messages()).To(HaveLen(before))
			Expect(provider.Sends()).To(Equal(0))
			Expect(ctrl.State()).To(Equal(conversation.Idle))
		})

		It("appends one user and one model message per successful turn", func() {
			before := len(ctrl.Messages())

			res, err := ctrl.Submit(ctx, conversation.Submission{Text: "¿Cómo va el S&P 500?"})
			Expect(err).NotTo(HaveOccurred())

			msgs := ctrl.Messages()
			Expect(msgs).To(HaveLen(before + 2))
			Expect(msgs[before].Role).To(Equal(llm.RoleUser))
			Expect(msgs[before].Content).To(Equal("¿Cómo va el S&P 500?"))
			Expect(msgs[before+1].Role).To(Equal(llm.RoleModel))
			Expect(msgs[before+1].Sources).NotTo(BeEmpty())

			Expect(res.User.Hash).To(Equal(*res.Reply.ParentHash))
			Expect(ctrl.Loading()).To(BeFalse())
			Expect(provider.Sends()).To(Equal(1))
		})

		It("attaches the encoded image to the user message", func() {
			_, err := ctrl.Submit(ctx, conversation.Submission{
				Image: imageenc.FromBytes("chart.png", "image/png", pngHeader),
			})
			Expect(err).NotTo(HaveOccurred())

			msgs := ctrl.Messages()
			user := msgs[len(msgs)-2]
			Expect(user.Image).To(HavePrefix("data:image/png;base64,"))

			turn := provider.Turns()[0]
			Expect(turn).To(HaveLen(1))
			Expect(turn[0].InlineData.MIMEType).To(Equal("image/png"))
		})

		It("reports unreadable images without a remote call", func() {
			before := len(ctrl.Messages())

			res, err := ctrl.Submit(ctx, conversation.Submission{
				Text:  "mira esto",
				Image: imageenc.FromBytes("notes.txt", "text/plain", []byte("not an image")),
			})
			Expect(err).NotTo(HaveOccurred())

			msgs := ctrl.Messages()
			Expect(msgs).To(HaveLen(before + 2))
			Expect(msgs[before].Role).To(Equal(llm.RoleUser))
			Expect(msgs[before].Image).To(BeEmpty())
			Expect(msgs[before+1].Role).To(Equal(llm.RoleModel))
			Expect(msgs[before+1].Content).To(Equal(printer.Sprintf(i18n.ImageError)))
			Expect(res.Reply).NotTo(BeNil())

			Expect(provider.Sends()).To(Equal(0))
			Expect(ctrl.State()).To(Equal(conversation.Idle))
		})

		It("turns remote failures into a model message and stays usable", func() {
			provider.SendFunc = func(context.Context, []llm.Part) (*llm.Reply, error) {
				return nil, errors.New("service unavailable")
			}

			_, err := ctrl.Submit(ctx, conversation.Submission{Text: "hola"})
			Expect(err).NotTo(HaveOccurred())

			msgs := ctrl.Messages()
			last := msgs[len(msgs)-1]
			Expect(last.Role).To(Equal(llm.RoleModel))
			Expect(last.Content).To(Equal("Lo siento, ocurrió un error. service unavailable"))
			Expect(msgs[len(msgs)-2].Content).To(Equal("hola"))
			Expect(ctrl.State()).To(Equal(conversation.Idle))

			provider.SendFunc = nil
			_, err = ctrl.Submit(ctx, conversation.Submission{Text: "otra vez"})
			Expect(err).NotTo(HaveOccurred())
			Expect(provider.Sends()).To(Equal(2))
		})

		It("completes the turn even when the caller's context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			provider.SendFunc = func(sctx context.Context, _ []llm.Part) (*llm.Reply, error) {
				cancel()
				Expect(sctx.Err()).NotTo(HaveOccurred())
				return &llm.Reply{Text: "listo"}, nil
			}

			_, err := ctrl.Submit(cctx, conversation.Submission{Text: "hola"})
			Expect(err).NotTo(HaveOccurred())
			msgs := ctrl.Messages()
			Expect(msgs[len(msgs)-1].Content).To(Equal("listo"))
		})

		It("makes exactly one remote call for rapid double submission", func() {
			release := make(chan struct{})
			entered := make(chan struct{})
			provider.SendFunc = func(context.Context, []llm.Part) (*llm.Reply, error) {
				close(entered)
				<-release
				return &llm.Reply{Text: "ok"}, nil
			}

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := ctrl.Submit(ctx, conversation.Submission{Text: "primero"})
				Expect(err).NotTo(HaveOccurred())
			}()

			Eventually(entered).Should(BeClosed())
			Expect(ctrl.State()).To(Equal(conversation.AwaitingReply))

			_, err := ctrl.Submit(ctx, conversation.Submission{Text: "segundo"})
			Expect(err).To(MatchError(conversation.ErrBusy))

			close(release)
			wg.Wait()

			Expect(provider.Sends()).To(Equal(1))
			Expect(ctrl.State()).To(Equal(conversation.Idle))
		})

		It("shows the user message before the reply arrives", func() {
			release := make(chan struct{})
			entered := make(chan struct{})
			provider.SendFunc = func(context.Context, []llm.Part) (*llm.Reply, error) {
				close(entered)
				<-release
				return &llm.Reply{Text: "ok"}, nil
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				_, _ = ctrl.Submit(ctx, conversation.Submission{Text: "optimista"})
			}()

			Eventually(entered).Should(BeClosed())
			msgs := ctrl.Messages()
			Expect(msgs[len(msgs)-1].Content).To(Equal("optimista"))

			close(release)
			Eventually(done).Should(BeClosed())
		})
	})

	Describe("Subscribe", func() {
		It("notifies on transcript changes", func() {
			ch, cancel := ctrl.Subscribe()
			defer cancel()

			Expect(ctrl.Start(ctx)).To(Succeed())
			Eventually(ch).Should(Receive())
		})
	})
})
