package service_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/4seer/Twake/internal/counter"
	"github.com/4seer/Twake/internal/pubsub"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/service"
	"github.com/4seer/Twake/internal/types"
)

var _ = Describe("WorkspaceService", func() {
	var (
		svc           service.WorkspaceService
		workspaceRepo *mockWorkspaceRepo
		userRepo      *mockUserRepo
		companyRepo   *mockCompanyRepo
		counterRepo   *mockCounterRepo
		appRepo       *mockApplicationRepo
		bus           *mockPublisher
		mailer        *mockMailer
		counters      *counter.Provider
		ctx           context.Context
	)

	const companyID = "company-1"

	membersKey := func(workspaceID string) repository.CounterKey {
		return repository.CounterKey{ID: workspaceID, CounterType: types.CounterTypeMembers}
	}

	addUserToRepo := func(id, email string) *repository.User {
		user := &repository.User{ID: id, Email: email, EmailCanonical: email, Name: id}
		userRepo.byID[id] = user
		return user
	}

	addCompanyUser := func(userID, role string) {
		companyRepo.companyUsers[companyUserKey{companyID, userID}] = &repository.CompanyUser{
			CompanyID: companyID,
			UserID:    userID,
			Role:      role,
		}
	}

	addWorkspaceToRepo := func(id, name string, isDefault bool) *repository.Workspace {
		ws := &repository.Workspace{ID: id, CompanyID: companyID, Name: name, IsDefault: isDefault}
		workspaceRepo.workspaces[companyID] = append(workspaceRepo.workspaces[companyID], ws)
		return ws
	}

	BeforeEach(func() {
		ctx = context.Background()
		workspaceRepo = newMockWorkspaceRepo()
		userRepo = newMockUserRepo()
		companyRepo = newMockCompanyRepo()
		counterRepo = newMockCounterRepo()
		appRepo = newMockApplicationRepo()
		bus = &mockPublisher{}
		mailer = &mockMailer{}
		counters = counter.NewProvider(counterRepo)

		companyRepo.companies[companyID] = &repository.Company{ID: companyID, Name: "Acme"}

		svc = service.NewWorkspaceService(
			workspaceRepo,
			userRepo,
			companyRepo,
			service.NewApplicationService(appRepo),
			counters,
			bus,
			mailer,
			"http://localhost:3000",
		)
	})

	Describe("Create", func() {
		It("should create the workspace and enroll the creator as moderator", func() {
			addUserToRepo("user-1", "alice@acme.test")

			created, err := svc.Create(ctx, &repository.Workspace{
				CompanyID: companyID,
				Name:      "Sales",
			}, types.ExecutionContext{CompanyID: companyID, User: types.ContextUser{ID: "user-1"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeEmpty())
			Expect(created.Name).To(Equal("Sales"))

			edge, err := workspaceRepo.FindUser(ctx, created.ID, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(edge).NotTo(BeNil())
			Expect(edge.Role).To(Equal(types.RoleModerator))
		})

		It("should publish a workspace added event", func() {
			addUserToRepo("user-1", "alice@acme.test")

			created, err := svc.Create(ctx, &repository.Workspace{
				CompanyID: companyID,
				Name:      "Sales",
			}, types.ExecutionContext{CompanyID: companyID, User: types.ContextUser{ID: "user-1"}})

			Expect(err).NotTo(HaveOccurred())
			events := bus.eventsOn(pubsub.TopicWorkspaceAdded)
			Expect(events).To(HaveLen(1))

			var ev pubsub.WorkspaceAddedEvent
			Expect(json.Unmarshal(events[0].data, &ev)).To(Succeed())
			Expect(ev.WorkspaceID).To(Equal(created.ID))
			Expect(ev.CompanyID).To(Equal(companyID))
		})

		It("should suffix the name when it collides within the company", func() {
			addUserToRepo("user-1", "alice@acme.test")
			addWorkspaceToRepo("ws-1", "Sales", false)

			created, err := svc.Create(ctx, &repository.Workspace{
				CompanyID: companyID,
				Name:      "Sales",
			}, types.ExecutionContext{CompanyID: companyID, User: types.ContextUser{ID: "user-1"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Name).To(Equal("Sales(2)"))
		})

		It("should count substring matches as collisions", func() {
			addUserToRepo("user-1", "alice@acme.test")
			addWorkspaceToRepo("ws-1", "Sales", false)
			addWorkspaceToRepo("ws-2", "Sales(2)", false)

			created, err := svc.Create(ctx, &repository.Workspace{
				CompanyID: companyID,
				Name:      "Sales",
			}, types.ExecutionContext{CompanyID: companyID, User: types.ContextUser{ID: "user-1"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Name).To(Equal("Sales(3)"))
		})

		It("should provision default applications for the company", func() {
			addUserToRepo("user-1", "alice@acme.test")
			appRepo.defaults = []*repository.Application{
				{ID: "app-1", Name: "Messages", IsDefault: true},
			}

			_, err := svc.Create(ctx, &repository.Workspace{
				CompanyID: companyID,
				Name:      "Sales",
			}, types.ExecutionContext{CompanyID: companyID, User: types.ContextUser{ID: "user-1"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(appRepo.companyApps[companyID]).To(HaveLen(1))
			Expect(appRepo.companyApps[companyID][0].ApplicationID).To(Equal("app-1"))
		})
	})

	Describe("Save", func() {
		Context("when updating a workspace that does not exist", func() {
			It("should fail with a not found error", func() {
				_, err := svc.Save(ctx, &repository.Workspace{
					ID:   "missing",
					Name: "Renamed",
				}, types.ExecutionContext{CompanyID: companyID, User: types.ContextUser{ID: "user-1"}})

				Expect(err).To(MatchError(service.ErrNotFound))
			})
		})
	})

	Describe("Update", func() {
		It("should report unimplemented", func() {
			err := svc.Update(ctx, service.WorkspacePrimaryKey{CompanyID: companyID, ID: "ws-1"},
				&repository.Workspace{}, types.ExecutionContext{CompanyID: companyID})
			Expect(err).To(MatchError(service.ErrUnimplemented))
		})
	})

	Describe("GetAllForCompany", func() {
		It("should provision a default Home workspace for an empty company", func() {
			workspaces, err := svc.GetAllForCompany(ctx, companyID)

			Expect(err).NotTo(HaveOccurred())
			Expect(workspaces).To(HaveLen(1))
			Expect(workspaces[0].Name).To(Equal("Home"))
			Expect(workspaces[0].IsDefault).To(BeTrue())
		})

		It("should not provision twice", func() {
			_, err := svc.GetAllForCompany(ctx, companyID)
			Expect(err).NotTo(HaveOccurred())

			workspaces, err := svc.GetAllForCompany(ctx, companyID)
			Expect(err).NotTo(HaveOccurred())
			Expect(workspaces).To(HaveLen(1))
		})
	})

	Describe("AddUser", func() {
		var pk service.WorkspacePrimaryKey

		BeforeEach(func() {
			addWorkspaceToRepo("ws-1", "Sales", false)
			pk = service.WorkspacePrimaryKey{CompanyID: companyID, ID: "ws-1"}
		})

		It("should fail for an unknown user", func() {
			err := svc.AddUser(ctx, pk, "ghost", types.RoleMember)
			Expect(err).To(MatchError(service.ErrUserNotFound))
		})

		It("should add the edge, bump the counter and record the cache entry", func() {
			addUserToRepo("user-1", "alice@acme.test")

			Expect(svc.AddUser(ctx, pk, "user-1", types.RoleMember)).To(Succeed())

			Expect(counterRepo.values[membersKey("ws-1")]).To(Equal(int64(1)))
			entries, _ := userRepo.FindCacheEntries(ctx, "user-1")
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].WorkspaceID).To(Equal("ws-1"))
		})

		It("should not bump the counter again for an existing member but still publish", func() {
			addUserToRepo("user-1", "alice@acme.test")

			Expect(svc.AddUser(ctx, pk, "user-1", types.RoleMember)).To(Succeed())
			Expect(svc.AddUser(ctx, pk, "user-1", types.RoleModerator)).To(Succeed())

			Expect(counterRepo.values[membersKey("ws-1")]).To(Equal(int64(1)))
			Expect(bus.eventsOn(pubsub.TopicWorkspaceMemberAdded)).To(HaveLen(2))

			edge, _ := workspaceRepo.FindUser(ctx, "ws-1", "user-1")
			Expect(edge.Role).To(Equal(types.RoleModerator))
		})
	})

	Describe("RemoveUser", func() {
		BeforeEach(func() {
			addWorkspaceToRepo("ws-1", "Sales", false)
		})

		It("should fail for a missing edge without touching the counter", func() {
			err := svc.RemoveUser(ctx, "ws-1", "ghost")

			Expect(err).To(MatchError(service.ErrNotFound))
			Expect(counterRepo.values).NotTo(HaveKey(membersKey("ws-1")))
			Expect(workspaceRepo.removeUserCalls).To(BeZero())
		})

		It("should remove the edge and decrement the counter", func() {
			addUserToRepo("user-1", "alice@acme.test")
			pk := service.WorkspacePrimaryKey{CompanyID: companyID, ID: "ws-1"}
			Expect(svc.AddUser(ctx, pk, "user-1", types.RoleMember)).To(Succeed())

			Expect(svc.RemoveUser(ctx, "ws-1", "user-1")).To(Succeed())

			edge, _ := workspaceRepo.FindUser(ctx, "ws-1", "user-1")
			Expect(edge).To(BeNil())
			Expect(counterRepo.values[membersKey("ws-1")]).To(Equal(int64(0)))
		})

		It("should publish a member removed event", func() {
			addUserToRepo("user-1", "alice@acme.test")
			pk := service.WorkspacePrimaryKey{CompanyID: companyID, ID: "ws-1"}
			Expect(svc.AddUser(ctx, pk, "user-1", types.RoleMember)).To(Succeed())

			Expect(svc.RemoveUser(ctx, "ws-1", "user-1")).To(Succeed())

			events := bus.eventsOn(pubsub.TopicWorkspaceMemberRemoved)
			Expect(events).To(HaveLen(1))

			var ev pubsub.WorkspaceMemberRemovedEvent
			Expect(json.Unmarshal(events[0].data, &ev)).To(Succeed())
			Expect(ev.WorkspaceID).To(Equal("ws-1"))
			Expect(ev.UserID).To(Equal("user-1"))
		})
	})

	Describe("UpdateUserRole", func() {
		BeforeEach(func() {
			addWorkspaceToRepo("ws-1", "Sales", false)
		})

		It("should fail for a missing edge", func() {
			err := svc.UpdateUserRole(ctx, "ws-1", "ghost", types.RoleModerator)
			Expect(err).To(MatchError(service.ErrNotFound))
		})

		It("should update the role and publish a member updated event", func() {
			addUserToRepo("user-1", "alice@acme.test")
			pk := service.WorkspacePrimaryKey{CompanyID: companyID, ID: "ws-1"}
			Expect(svc.AddUser(ctx, pk, "user-1", types.RoleMember)).To(Succeed())

			Expect(svc.UpdateUserRole(ctx, "ws-1", "user-1", types.RoleModerator)).To(Succeed())

			edge, _ := workspaceRepo.FindUser(ctx, "ws-1", "user-1")
			Expect(edge.Role).To(Equal(types.RoleModerator))

			events := bus.eventsOn(pubsub.TopicWorkspaceMemberUpdated)
			Expect(events).To(HaveLen(1))

			var ev pubsub.WorkspaceMemberUpdatedEvent
			Expect(json.Unmarshal(events[0].data, &ev)).To(Succeed())
			Expect(ev.WorkspaceID).To(Equal("ws-1"))
			Expect(ev.UserID).To(Equal("user-1"))
			Expect(ev.Role).To(Equal(types.RoleModerator))
		})
	})

	Describe("GetUsersCount", func() {
		It("should read zero for a workspace with no counter", func() {
			count, err := svc.GetUsersCount(ctx, "ws-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("should revise a negative counter from the membership rows", func() {
			addWorkspaceToRepo("ws-1", "Sales", false)
			addUserToRepo("user-1", "alice@acme.test")
			pk := service.WorkspacePrimaryKey{CompanyID: companyID, ID: "ws-1"}
			Expect(svc.AddUser(ctx, pk, "user-1", types.RoleMember)).To(Succeed())

			// Simulate drift from a failed multi-step write.
			counterRepo.values[membersKey("ws-1")] = -3

			count, err := svc.GetUsersCount(ctx, "ws-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
			Expect(counterRepo.values[membersKey("ws-1")]).To(Equal(int64(1)))
		})
	})

	Describe("AddPendingUser", func() {
		It("should store the invitation", func() {
			Expect(svc.AddPendingUser(ctx, "ws-1", "bob@acme.test", types.RoleMember, types.CompanyRoleMember)).To(Succeed())

			pending, err := svc.GetPendingUser(ctx, "ws-1", "bob@acme.test")
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).NotTo(BeNil())
			Expect(pending.Role).To(Equal(types.RoleMember))
		})

		It("should reject a duplicate invitation", func() {
			Expect(svc.AddPendingUser(ctx, "ws-1", "bob@acme.test", types.RoleMember, types.CompanyRoleMember)).To(Succeed())

			err := svc.AddPendingUser(ctx, "ws-1", "bob@acme.test", types.RoleModerator, types.CompanyRoleMember)
			Expect(err).To(MatchError(service.ErrPendingUserExists))
		})

		It("should email the invitation with the workspace name", func() {
			addWorkspaceToRepo("ws-1", "Marketing", false)

			Expect(svc.AddPendingUser(ctx, "ws-1", "bob@acme.test", types.RoleMember, types.CompanyRoleMember)).To(Succeed())

			Expect(mailer.invitations).To(HaveLen(1))
			Expect(mailer.invitations[0].to).To(Equal("bob@acme.test"))
			Expect(mailer.invitations[0].data.WorkspaceName).To(Equal("Marketing"))
			Expect(mailer.invitations[0].data.InviteURL).To(Equal("http://localhost:3000/join/ws-1"))
		})

		It("should fall back to a generic name when the workspace cannot be resolved", func() {
			Expect(svc.AddPendingUser(ctx, "ws-unknown", "bob@acme.test", types.RoleMember, types.CompanyRoleMember)).To(Succeed())

			Expect(mailer.invitations).To(HaveLen(1))
			Expect(mailer.invitations[0].data.WorkspaceName).To(Equal("your workspace"))
		})
	})

	Describe("ProcessPendingUser", func() {
		It("should convert a matching invitation into a membership", func() {
			user := addUserToRepo("user-1", "bob@acme.test")
			addCompanyUser("user-1", types.CompanyRoleMember)
			addWorkspaceToRepo("ws-1", "Sales", false)
			Expect(svc.AddPendingUser(ctx, "ws-1", "bob@acme.test", types.RoleModerator, types.CompanyRoleMember)).To(Succeed())

			Expect(svc.ProcessPendingUser(ctx, user)).To(Succeed())

			edge, _ := workspaceRepo.FindUser(ctx, "ws-1", "user-1")
			Expect(edge).NotTo(BeNil())
			Expect(edge.Role).To(Equal(types.RoleModerator))

			pending, _ := svc.GetPendingUser(ctx, "ws-1", "bob@acme.test")
			Expect(pending).To(BeNil())
		})

		It("should be idempotent", func() {
			user := addUserToRepo("user-1", "bob@acme.test")
			addCompanyUser("user-1", types.CompanyRoleMember)
			addWorkspaceToRepo("ws-1", "Sales", false)
			Expect(svc.AddPendingUser(ctx, "ws-1", "bob@acme.test", types.RoleMember, types.CompanyRoleMember)).To(Succeed())

			Expect(svc.ProcessPendingUser(ctx, user)).To(Succeed())
			Expect(svc.ProcessPendingUser(ctx, user)).To(Succeed())

			Expect(counterRepo.values[membersKey("ws-1")]).To(Equal(int64(1)))
		})
	})

	Describe("GetAllForUser", func() {
		It("should fail for an unknown user", func() {
			_, err := svc.GetAllForUser(ctx, "ghost", companyID)
			Expect(err).To(MatchError(service.ErrUserNotFound))
		})

		It("should return existing memberships", func() {
			addUserToRepo("user-1", "alice@acme.test")
			addCompanyUser("user-1", types.CompanyRoleMember)
			addWorkspaceToRepo("ws-1", "Sales", false)
			pk := service.WorkspacePrimaryKey{CompanyID: companyID, ID: "ws-1"}
			Expect(svc.AddUser(ctx, pk, "user-1", types.RoleMember)).To(Succeed())

			memberships, err := svc.GetAllForUser(ctx, "user-1", companyID)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(HaveLen(1))
			Expect(memberships[0].WorkspaceID).To(Equal("ws-1"))
		})

		It("should provision Home and enroll a member when the company has no workspaces", func() {
			addUserToRepo("user-1", "alice@acme.test")
			addCompanyUser("user-1", types.CompanyRoleMember)

			memberships, err := svc.GetAllForUser(ctx, "user-1", companyID)
			Expect(err).NotTo(HaveOccurred())

			workspaces := workspaceRepo.workspaces[companyID]
			Expect(workspaces).To(HaveLen(1))
			Expect(workspaces[0].Name).To(Equal("Home"))
			Expect(workspaces[0].IsDefault).To(BeTrue())

			Expect(memberships).To(HaveLen(1))
			Expect(memberships[0].WorkspaceID).To(Equal(workspaces[0].ID))
			Expect(memberships[0].Role).To(Equal(types.RoleMember))
		})

		It("should auto-enroll a member into default workspaces", func() {
			addUserToRepo("user-1", "alice@acme.test")
			addCompanyUser("user-1", types.CompanyRoleMember)
			addWorkspaceToRepo("ws-default", "Home", true)
			addWorkspaceToRepo("ws-other", "Sales", false)

			memberships, err := svc.GetAllForUser(ctx, "user-1", companyID)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(HaveLen(1))
			Expect(memberships[0].WorkspaceID).To(Equal("ws-default"))
			Expect(memberships[0].Role).To(Equal(types.RoleMember))
		})

		It("should make company admins moderators of default workspaces", func() {
			addUserToRepo("user-1", "alice@acme.test")
			addCompanyUser("user-1", types.CompanyRoleAdmin)
			addWorkspaceToRepo("ws-default", "Home", true)

			memberships, err := svc.GetAllForUser(ctx, "user-1", companyID)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(HaveLen(1))
			Expect(memberships[0].Role).To(Equal(types.RoleModerator))
		})

		It("should never auto-enroll guests", func() {
			addUserToRepo("user-1", "guest@external.test")
			addCompanyUser("user-1", types.CompanyRoleGuest)
			addWorkspaceToRepo("ws-default", "Home", true)

			memberships, err := svc.GetAllForUser(ctx, "user-1", companyID)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(BeEmpty())

			edge, _ := workspaceRepo.FindUser(ctx, "ws-default", "user-1")
			Expect(edge).To(BeNil())
		})

		It("should resolve pending invitations before collecting memberships", func() {
			addUserToRepo("user-1", "bob@acme.test")
			addCompanyUser("user-1", types.CompanyRoleMember)
			addWorkspaceToRepo("ws-1", "Sales", false)
			Expect(svc.AddPendingUser(ctx, "ws-1", "bob@acme.test", types.RoleMember, types.CompanyRoleMember)).To(Succeed())

			memberships, err := svc.GetAllForUser(ctx, "user-1", companyID)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(HaveLen(1))
			Expect(memberships[0].WorkspaceID).To(Equal("ws-1"))
		})
	})

	Describe("AllUsers", func() {
		It("should stream every member and close the channels", func() {
			addWorkspaceToRepo("ws-1", "Sales", false)
			pk := service.WorkspacePrimaryKey{CompanyID: companyID, ID: "ws-1"}
			for _, id := range []string{"user-1", "user-2", "user-3"} {
				addUserToRepo(id, id+"@acme.test")
				Expect(svc.AddUser(ctx, pk, id, types.RoleMember)).To(Succeed())
			}

			items, errc := svc.AllUsers(ctx, "ws-1")
			var streamed []string
			for wu := range items {
				streamed = append(streamed, wu.UserID)
			}
			Expect(<-errc).NotTo(HaveOccurred())
			Expect(streamed).To(ConsistOf("user-1", "user-2", "user-3"))
		})
	})

	Describe("Delete", func() {
		It("should succeed even when the workspace does not exist", func() {
			err := svc.Delete(ctx, "missing", types.ExecutionContext{CompanyID: companyID})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should publish a workspace deleted event", func() {
			addWorkspaceToRepo("ws-1", "Sales", false)

			Expect(svc.Delete(ctx, "ws-1", types.ExecutionContext{CompanyID: companyID})).To(Succeed())

			events := bus.eventsOn(pubsub.TopicWorkspaceDeleted)
			Expect(events).To(HaveLen(1))

			var ev pubsub.WorkspaceDeletedEvent
			Expect(json.Unmarshal(events[0].data, &ev)).To(Succeed())
			Expect(ev.CompanyID).To(Equal(companyID))
			Expect(ev.WorkspaceID).To(Equal("ws-1"))
		})
	})
})
