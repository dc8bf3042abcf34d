package screen

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hobbs-bbs/hobbs/internal/auth"
	"github.com/hobbs-bbs/hobbs/internal/chat"
	"github.com/hobbs-bbs/hobbs/internal/config"
	"github.com/hobbs-bbs/hobbs/internal/domain"
	"github.com/hobbs-bbs/hobbs/internal/ratelimit"
	"github.com/hobbs-bbs/hobbs/internal/repo/memrepo"
	"github.com/hobbs-bbs/hobbs/internal/session"
)

// testHarness wires a ScreenContext over a scripted input script and a
// captured output buffer, so handler tests can feed canned prompt
// answers without a real socket, using IO's buffered transport test
// seam (NewBufferedTransport).
type testHarness struct {
	ctx  *ScreenContext
	out  *bytes.Buffer
	deps *Deps
}

func newHarness(t *testing.T, input string, boards ...domain.Board) *testHarness {
	t.Helper()
	deps := &Deps{
		Repos:     memrepo.New(boards...),
		Config:    config.ServerConfig{BBSName: "Test BBS", BBSDescription: "test"},
		Chat:      chat.NewRoom(50),
		Registry:  session.NewRegistry(),
		Limiters:  ratelimit.DefaultLimiters(),
		Throttler: auth.DefaultLoginThrottler(),
		Catalog:   DefaultCatalog(),
	}
	out := &bytes.Buffer{}
	transport := NewBufferedTransport(strings.NewReader(input), out)
	io := NewIO(transport)
	sess := session.NewSession(1, "127.0.0.1:12345")
	c := &ScreenContext{
		Deps: deps,
		IO:   io,
		Sess: sess,
		Ctx:  context.Background(),
	}
	return &testHarness{ctx: c, out: out, deps: deps}
}

func (h *testHarness) createUser(t *testing.T, username string, role domain.Role) domain.User {
	t.Helper()
	u, err := h.deps.Repos.Users.Create(context.Background(), domain.User{
		Username: username,
		Nickname: username,
		Role:     role,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (h *testHarness) loginAs(u domain.User) {
	id := u.ID
	h.ctx.Sess.UserID = &id
	h.ctx.Sess.Username = u.Username
}

func TestBoardCreateThreadAndReply(t *testing.T) {
	board := domain.Board{ID: 1, Name: "General", BoardType: domain.BoardThread, MinReadRole: domain.RoleGuest, MinWriteRole: domain.RoleMember, IsActive: true}
	h := newHarness(t, "", board)
	dave := h.createUser(t, "dave", domain.RoleMember)
	h.loginAs(dave)

	thread, post, err := h.deps.Repos.Threads.CreateWithPost(context.Background(), domain.Thread{
		BoardID: board.ID, Title: "T1", AuthorID: dave.ID,
	}, "hello")
	if err != nil {
		t.Fatalf("CreateWithPost: %v", err)
	}
	if thread.PostCount != 1 {
		t.Fatalf("PostCount = %d, want 1", thread.PostCount)
	}
	if post.ThreadID != thread.ID {
		t.Fatalf("post.ThreadID = %d, want %d", post.ThreadID, thread.ID)
	}

	eve := h.createUser(t, "eve", domain.RoleMember)
	if _, err := h.deps.Repos.Posts.Reply(context.Background(), thread.ID, eve.ID, "hi"); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	got, err := h.deps.Repos.Threads.GetByID(context.Background(), thread.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.PostCount != 2 {
		t.Fatalf("PostCount after reply = %d, want 2", got.PostCount)
	}

	posts, err := h.deps.Repos.Posts.ListByThread(context.Background(), thread.ID)
	if err != nil {
		t.Fatalf("ListByThread: %v", err)
	}
	if len(posts) != 2 || posts[0].Body != "hello" || posts[1].Body != "hi" {
		t.Fatalf("unexpected post order/content: %+v", posts)
	}
}

func TestRunCreateThreadViaHandler(t *testing.T) {
	board := domain.Board{ID: 1, Name: "General", BoardType: domain.BoardThread, MinReadRole: domain.RoleGuest, MinWriteRole: domain.RoleMember, IsActive: true}
	input := "My Title\nbody line one\n.\n"
	h := newHarness(t, input, board)
	dave := h.createUser(t, "dave", domain.RoleMember)
	h.loginAs(dave)

	if _, err := runCreateThread(h.ctx, board); err != nil {
		t.Fatalf("runCreateThread: %v", err)
	}

	threads, err := h.deps.Repos.Threads.ListByBoard(context.Background(), board.ID)
	if err != nil {
		t.Fatalf("ListByBoard: %v", err)
	}
	if len(threads) != 1 || threads[0].Title != "My Title" {
		t.Fatalf("unexpected threads: %+v", threads)
	}
}

func TestBoardListMarkAllReadAction(t *testing.T) {
	board := domain.Board{ID: 1, Name: "General", BoardType: domain.BoardFlat, MinReadRole: domain.RoleGuest, MinWriteRole: domain.RoleMember, IsActive: true}
	h := newHarness(t, "A1\nQ\n", board)
	u := h.createUser(t, "u", domain.RoleMember)
	h.loginAs(u)
	ctx := context.Background()

	if _, err := h.deps.Repos.Posts.CreateFlat(ctx, board.ID, u.ID, "t1", "b1"); err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}
	n, _ := h.deps.Repos.Unread.CountUnread(ctx, u.ID, board.ID)
	if n != 1 {
		t.Fatalf("unread before mark-all = %d, want 1", n)
	}

	if _, err := runBoardList(h.ctx); err != nil {
		t.Fatalf("runBoardList: %v", err)
	}
	n, _ = h.deps.Repos.Unread.CountUnread(ctx, u.ID, board.ID)
	if n != 0 {
		t.Fatalf("unread after A1 action = %d, want 0", n)
	}
}

func TestUnreadAfterMarkAllRead(t *testing.T) {
	board := domain.Board{ID: 1, Name: "General", BoardType: domain.BoardFlat, MinReadRole: domain.RoleGuest, MinWriteRole: domain.RoleMember, IsActive: true}
	h := newHarness(t, "", board)
	u := h.createUser(t, "u", domain.RoleMember)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := h.deps.Repos.Posts.CreateFlat(ctx, board.ID, u.ID, "title", "body"); err != nil {
			t.Fatalf("CreateFlat: %v", err)
		}
	}
	posts, _ := h.deps.Repos.Posts.ListByBoard(ctx, board.ID)
	if len(posts) != 3 {
		t.Fatalf("want 3 posts, got %d", len(posts))
	}

	if err := h.deps.Repos.Unread.MarkRead(ctx, u.ID, board.ID, posts[1].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	n, err := h.deps.Repos.Unread.CountUnread(ctx, u.ID, board.ID)
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if n != 1 {
		t.Fatalf("unread = %d, want 1", n)
	}

	if err := h.deps.Repos.Unread.MarkAllRead(ctx, u.ID, board.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	n, _ = h.deps.Repos.Unread.CountUnread(ctx, u.ID, board.ID)
	if n != 0 {
		t.Fatalf("unread after MarkAllRead = %d, want 0", n)
	}

	if _, err := h.deps.Repos.Posts.CreateFlat(ctx, board.ID, u.ID, "title4", "body4"); err != nil {
		t.Fatalf("CreateFlat: %v", err)
	}
	n, _ = h.deps.Repos.Unread.CountUnread(ctx, u.ID, board.ID)
	if n != 1 {
		t.Fatalf("unread after new post = %d, want 1", n)
	}
}

func TestMailComposeReadDelete(t *testing.T) {
	input := "bob\nHello\nfirst line\n.\n"
	h := newHarness(t, input)
	alice := h.createUser(t, "alice", domain.RoleMember)
	bob := h.createUser(t, "bob", domain.RoleMember)
	h.loginAs(alice)

	if err := runComposeMail(h.ctx, alice.ID); err != nil {
		t.Fatalf("runComposeMail: %v", err)
	}

	inbox, err := h.deps.Repos.Mail.Inbox(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if len(inbox) != 1 || inbox[0].Subject != "Hello" {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}
	if inbox[0].IsRead {
		t.Fatalf("mail should start unread")
	}

	mailID := inbox[0].ID
	if err := h.deps.Repos.Mail.MarkRead(context.Background(), mailID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := h.deps.Repos.Mail.DeleteForSide(context.Background(), mailID, true); err != nil {
		t.Fatalf("DeleteForSide(recipient): %v", err)
	}
	// Only one side has deleted; the row should still exist for the sender.
	sent, err := h.deps.Repos.Mail.Sent(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("Sent: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected sent mail to still exist pending sender-side deletion, got %d", len(sent))
	}
	if err := h.deps.Repos.Mail.DeleteForSide(context.Background(), mailID, false); err != nil {
		t.Fatalf("DeleteForSide(sender): %v", err)
	}
	if _, err := h.deps.Repos.Mail.GetByID(context.Background(), mailID); err == nil {
		t.Fatalf("expected mail to be purged once both sides deleted it")
	}
}

func TestMailRequiresLogin(t *testing.T) {
	h := newHarness(t, "Q\n")
	result, err := runMailInbox(h.ctx)
	if err != nil {
		t.Fatalf("runMailInbox: %v", err)
	}
	if result.Kind != ResultBack {
		t.Fatalf("result = %v, want Back for a guest", result.Kind)
	}
	if !strings.Contains(h.out.String(), "must be logged in") {
		t.Fatalf("expected login-required message, got %q", h.out.String())
	}
}

func TestChatJoinSpeakLeave(t *testing.T) {
	h := newHarness(t, "hello room\nQ\n")
	alice := h.createUser(t, "alice", domain.RoleMember)
	h.loginAs(alice)

	result, err := runChat(h.ctx)
	if err != nil {
		t.Fatalf("runChat: %v", err)
	}
	if result.Kind != ResultBack {
		t.Fatalf("result = %v, want Back", result.Kind)
	}
	if h.deps.Chat.ActiveCount() != 0 {
		t.Fatalf("expected chat room to be empty after leaving, got %d", h.deps.Chat.ActiveCount())
	}
	history := h.deps.Chat.History()
	found := false
	for _, m := range history {
		if m.Text == "hello room" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected spoken message in history, got %+v", history)
	}
}

func TestAdminCannotDemoteLastSysOp(t *testing.T) {
	root := domain.Role(domain.RoleSysOp)
	h := newHarness(t, "")
	admin := h.createUser(t, "root", root)

	activeSysOps, err := h.deps.Repos.Users.CountActiveSysOps(context.Background())
	if err != nil {
		t.Fatalf("CountActiveSysOps: %v", err)
	}
	if err := validateRoleChange(admin, admin, domain.RoleMember, activeSysOps); err == nil {
		t.Fatalf("expected validateRoleChange to reject self-demotion of the last SysOp")
	}
}

func TestAdminRoleChangeHandler(t *testing.T) {
	h := newHarness(t, "sysop\n")
	root := h.createUser(t, "root", domain.RoleSysOp)
	second := h.createUser(t, "second", domain.RoleSysOp)
	member := h.createUser(t, "member", domain.RoleMember)
	_ = second

	h.loginAs(root)
	if err := runRoleChange(h.ctx, root, member); err != nil {
		t.Fatalf("runRoleChange: %v", err)
	}
	got, err := h.deps.Repos.Users.GetByID(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != domain.RoleSysOp {
		t.Fatalf("role = %v, want SysOp after promotion", got.Role)
	}
}

func TestAdminNicknameAndPasswordReset(t *testing.T) {
	h := newHarness(t, "Newnick\n")
	root := h.createUser(t, "root", domain.RoleSysOp)
	member := h.createUser(t, "member", domain.RoleMember)
	h.loginAs(root)

	if err := runAdminNickname(h.ctx, root, member); err != nil {
		t.Fatalf("runAdminNickname: %v", err)
	}
	got, err := h.deps.Repos.Users.GetByID(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Nickname != "Newnick" {
		t.Fatalf("nickname = %q, want Newnick", got.Nickname)
	}

	before := got.PasswordHash
	if err := runAdminResetPassword(h.ctx, root, got); err != nil {
		t.Fatalf("runAdminResetPassword: %v", err)
	}
	got, err = h.deps.Repos.Users.GetByID(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.PasswordHash == before || got.PasswordHash == "" {
		t.Fatalf("expected password hash to change, got %q", got.PasswordHash)
	}
	if !strings.Contains(h.out.String(), "New password for member:") {
		t.Fatalf("expected reset message in output, got %q", h.out.String())
	}
}

func TestReadLineCollapsesCRLFAcrossReads(t *testing.T) {
	out := &bytes.Buffer{}
	transport := NewBufferedTransport(strings.NewReader("L\r\ncarol\r\n"), out)
	io := NewIO(transport)

	first, err := io.ReadLine(context.Background(), time.Minute)
	if err != nil {
		t.Fatalf("first ReadLine: %v", err)
	}
	if first != "L" {
		t.Fatalf("first line = %q, want L", first)
	}
	second, err := io.ReadLine(context.Background(), time.Minute)
	if err != nil {
		t.Fatalf("second ReadLine: %v", err)
	}
	if second != "carol" {
		t.Fatalf("second line = %q, want carol (the LF of the first CRLF must not surface as an empty line)", second)
	}
}

func TestProfileOutputModeToggle(t *testing.T) {
	h := newHarness(t, "O\nB\n")
	alice := h.createUser(t, "alice", domain.RoleMember)
	h.loginAs(alice)

	result, err := runProfile(h.ctx)
	if err != nil {
		t.Fatalf("runProfile: %v", err)
	}
	if result.Kind != ResultBack {
		t.Fatalf("result = %v, want Back", result.Kind)
	}
	if h.ctx.Sess.OutputMode != session.OutputPlain {
		t.Fatalf("output mode = %v, want Plain after toggle", h.ctx.Sess.OutputMode)
	}
}

func TestFileBrowserDownload(t *testing.T) {
	h := newHarness(t, "")
	f, err := h.deps.Repos.Files.CreateFile(context.Background(), domain.File{
		DisplayName: "readme.txt",
		BlobName:    "blob-1",
		SizeBytes:   10,
	})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := runDownloadFile(h.ctx, f); err != nil {
		t.Fatalf("runDownloadFile: %v", err)
	}
	if !strings.Contains(h.out.String(), "blob-1") {
		t.Fatalf("expected blob name in output, got %q", h.out.String())
	}
	updated, err := h.deps.Repos.Files.GetFolder(context.Background(), f.FolderID)
	_ = updated
	_ = err // root folder lookup is not expected to exist; only checking RecordDownload didn't error above.
}
