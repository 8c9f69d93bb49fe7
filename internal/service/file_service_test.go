package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/4seer/Twake/internal/pubsub"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/service"
	"github.com/4seer/Twake/internal/types"
)

var _ = Describe("FileService", func() {
	var (
		svc      service.FileService
		fileRepo *mockFileRepo
		ctx      context.Context
		ec       types.ExecutionContext
	)

	BeforeEach(func() {
		ctx = context.Background()
		fileRepo = newMockFileRepo()
		svc = service.NewFileService(fileRepo)
		ec = types.ExecutionContext{CompanyID: "company-1", User: types.ContextUser{ID: "user-1"}}
	})

	Describe("Create", func() {
		It("should store the file with thumbnails pending", func() {
			mime := "image/png"
			file, err := svc.Create(ctx, "photo.png", &mime, 2048, ec)

			Expect(err).NotTo(HaveOccurred())
			Expect(file.ID).NotTo(BeEmpty())
			Expect(file.CompanyID).To(Equal("company-1"))
			Expect(file.ThumbnailsStatus).To(Equal(service.ThumbnailsStatusWaiting))
		})

		It("should reject an empty name", func() {
			_, err := svc.Create(ctx, "", nil, 0, ec)
			Expect(err).To(MatchError(service.ErrInvalidInput))
		})
	})

	Describe("Get", func() {
		It("should report not found for a missing file", func() {
			_, err := svc.Get(ctx, "company-1", "missing")
			Expect(err).To(MatchError(service.ErrNotFound))
		})
	})
})

var _ = Describe("PreviewFinishedProcessor", func() {
	var (
		processor *service.PreviewFinishedProcessor
		fileRepo  *mockFileRepo
		ctx       context.Context
	)

	callbackFor := func(companyID, fileID string, thumbnails []pubsub.PreviewThumbnail) *pubsub.PreviewCallback {
		return &pubsub.PreviewCallback{
			Document: &pubsub.PreviewDocument{
				ID: `{"company_id":"` + companyID + `","id":"` + fileID + `"}`,
			},
			Thumbnails: thumbnails,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		fileRepo = newMockFileRepo()
		processor = service.NewPreviewFinishedProcessor(fileRepo)
	})

	It("should reject callbacks without a document or thumbnails", func() {
		Expect(processor.Process(ctx, nil)).To(MatchError(service.ErrInvalidInput))
		Expect(processor.Process(ctx, &pubsub.PreviewCallback{})).To(MatchError(service.ErrInvalidInput))
	})

	It("should attach the thumbnails and mark the file done", func() {
		file := &repository.File{ID: "file-1", CompanyID: "company-1", Name: "photo.png", ThumbnailsStatus: service.ThumbnailsStatusWaiting}
		Expect(fileRepo.Create(ctx, file)).To(Succeed())

		callback := callbackFor("company-1", "file-1", []pubsub.PreviewThumbnail{
			{Path: "previews/company-1/file-1/thumb-0.png", Size: 128, Type: "image/png", Width: 320, Height: 240},
			{Path: "previews/company-1/file-1/thumb-1.png", Size: 64, Type: "image/png", Width: 160, Height: 120},
		})

		Expect(processor.Process(ctx, callback)).To(Succeed())

		updated, _ := fileRepo.FindByID(ctx, "company-1", "file-1")
		Expect(updated.ThumbnailsStatus).To(Equal(service.ThumbnailsStatusDone))
		Expect(updated.Thumbnails).To(HaveLen(2))
		Expect(updated.Thumbnails[0].ID).To(Equal("thumb-0.png"))
		Expect(updated.Thumbnails[0].Index).To(Equal(0))
		Expect(updated.Thumbnails[1].ID).To(Equal("thumb-1.png"))
	})

	It("should drop callbacks for files that no longer exist", func() {
		callback := callbackFor("company-1", "gone", []pubsub.PreviewThumbnail{
			{Path: "previews/thumb.png"},
		})

		Expect(processor.Process(ctx, callback)).To(Succeed())
		Expect(fileRepo.updateCalls).To(BeZero())
	})
})
