package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	activitydomain "replyhub-backend/internal/activity/domain"
	activityrepository "replyhub-backend/internal/activity/repository"
	dispatchdomain "replyhub-backend/internal/dispatch/domain"
	"replyhub-backend/internal/dispatch/dto"
	learningusecase "replyhub-backend/internal/learning/usecase"
	mailboxdomain "replyhub-backend/internal/mailbox/domain"
	mailboxrepository "replyhub-backend/internal/mailbox/repository"
	mailboxusecase "replyhub-backend/internal/mailbox/usecase"
	ticketrepository "replyhub-backend/internal/ticket/repository"
	ticketusecase "replyhub-backend/internal/ticket/usecase"
	"replyhub-backend/pkg/config"

	"github.com/google/uuid"
)

const (
	referencesDepth = 5

	// activityDetailLimit caps stored diagnostic strings; provider errors can
	// embed entire response bodies.
	activityDetailLimit = 256
)

// DispatchUsecase orchestrates one outbound reply end to end: recipient
// defaulting, identity resolution, token refresh, provider delivery, and the
// post-send persistence handoff.
type DispatchUsecase interface {
	SendReply(ctx context.Context, workspaceID, threadID string, req *dto.SendReplyRequest) (*dto.SendReplyResponse, error)
}

type dispatchUsecase struct {
	threads  ticketrepository.ThreadRepository
	messages ticketrepository.MessageRepository
	accounts mailboxrepository.MailAccountRepository
	activity activityrepository.ActivityLogRepository

	tickets  ticketusecase.TicketUsecase
	learning learningusecase.LearningUsecase
	tokens   *mailboxusecase.TokenManager

	senders map[mailboxdomain.ProviderKind]dispatchdomain.ProviderSender
	config  *config.Config
}

func NewDispatchUsecase(
	threads ticketrepository.ThreadRepository,
	messages ticketrepository.MessageRepository,
	accounts mailboxrepository.MailAccountRepository,
	activity activityrepository.ActivityLogRepository,
	tickets ticketusecase.TicketUsecase,
	learning learningusecase.LearningUsecase,
	tokens *mailboxusecase.TokenManager,
	senders map[mailboxdomain.ProviderKind]dispatchdomain.ProviderSender,
	cfg *config.Config,
) DispatchUsecase {
	return &dispatchUsecase{
		threads:  threads,
		messages: messages,
		accounts: accounts,
		activity: activity,
		tickets:  tickets,
		learning: learning,
		tokens:   tokens,
		senders:  senders,
		config:   cfg,
	}
}

func (u *dispatchUsecase) SendReply(ctx context.Context, workspaceID, threadID string, req *dto.SendReplyRequest) (*dto.SendReplyResponse, error) {
	if req.BodyText == "" && req.BodyHTML == "" {
		return nil, errors.New("reply body is empty")
	}

	thread, err := u.threads.FindByID(workspaceID, threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, errors.New("thread not found")
	}

	account, err := u.accounts.FindByID(workspaceID, thread.MailAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("mailbox for this thread no longer exists")
	}
	if account.Status != mailboxdomain.AccountConnected {
		return nil, fmt.Errorf("mailbox %s is disconnected: %w", account.Email, mailboxdomain.ErrAuthExpired)
	}

	sender := u.senders[account.Provider]
	if sender == nil {
		return nil, fmt.Errorf("no sender registered for provider %s", account.Provider)
	}

	inbound, err := u.messages.LatestInbound(threadID)
	if err != nil {
		return nil, err
	}

	// Recipient defaulting: explicit lists win; otherwise the latest inbound
	// sender. Relay mailboxes never get a defaulted recipient.
	explicit := len(req.To) > 0
	to := req.To
	if !explicit {
		if account.Provider == mailboxdomain.ProviderRelay {
			return nil, dispatchdomain.ErrRecipientMissing
		}
		if inbound == nil || inbound.FromEmail == "" {
			return nil, dispatchdomain.ErrRecipientMissing
		}
		to = []string{inbound.FromEmail}
	}

	subject := req.Subject
	if subject == "" {
		base := thread.Subject
		if base == "" && inbound != nil {
			base = inbound.Subject
		}
		subject = dispatchdomain.NormalizeReplySubject(base)
	}

	identity := mailboxdomain.ResolveSenderIdentity(account, req.DisplayName, u.config.RelayFromAddress, u.config.RelayFromName)

	accessToken := ""
	if account.IsOAuth() {
		accessToken, err = u.tokens.AccessToken(ctx, account)
		if err != nil {
			return nil, err
		}
	}

	sendReq := &dispatchdomain.SendRequest{
		Account:            account,
		Identity:           identity,
		AccessToken:        accessToken,
		ProviderThreadID:   thread.ProviderThreadID,
		ExplicitRecipients: explicit,
		Subject:            subject,
		BodyText:           req.BodyText,
		BodyHTML:           req.BodyHTML,
		To:                 to,
		Cc:                 req.Cc,
		Bcc:                req.Bcc,
	}

	if inbound != nil {
		sendReq.ReplyToMessageID = inbound.ProviderMessageID
		sendReq.InReplyTo = dispatchdomain.NormalizeMessageID(inbound.ProviderMessageID)
		if ids, err := u.messages.RecentInboundProviderIDs(threadID, referencesDepth); err == nil {
			// Oldest first, the way References chains are written.
			for i := len(ids) - 1; i >= 0; i-- {
				sendReq.References = append(sendReq.References, dispatchdomain.NormalizeMessageID(ids[i]))
			}
		}
	}

	// Captured before commit: the commit clears AI drafts on the thread.
	aiDraftText, err := u.messages.LatestAIDraftText(threadID)
	if err != nil {
		log.Printf("[WARN] Unable to read AI draft for thread %s: %v", threadID, err)
	}

	outcome, err := sender.Send(ctx, sendReq)
	if err != nil {
		u.logActivity(workspaceID, threadID, string(account.Provider), activitydomain.ActivitySendFailed, err.Error())
		return nil, err
	}

	if account.Provider == mailboxdomain.ProviderRelay {
		u.logActivity(workspaceID, threadID, string(account.Provider), activitydomain.ActivityRelaySend,
			fmt.Sprintf("delivered as %s via %s identity", outcome.ProviderMessageID, identity.Mode))
	}

	message, err := u.tickets.CommitSent(&ticketusecase.CommitSentInput{
		Thread:            thread,
		Account:           account,
		DraftMessageID:    req.DraftMessageID,
		ProviderMessageID: outcome.ProviderMessageID,
		Provider:          outcome.Provider,
		Identity:          identity,
		Subject:           subject,
		BodyText:          req.BodyText,
		BodyHTML:          req.BodyHTML,
		To:                to,
		Cc:                req.Cc,
		Bcc:               req.Bcc,
	})
	if err != nil {
		// The provider accepted the message; surface the bookkeeping failure
		// but make clear the send itself went out.
		return nil, fmt.Errorf("reply was sent but could not be recorded: %w", err)
	}

	if account.LearningEnabled && aiDraftText != "" {
		if err := u.learning.RecordEdit(workspaceID, account.ID, aiDraftText, req.BodyText); err != nil {
			log.Printf("[WARN] Learning update failed for account %s: %v", account.ID, err)
		}
	}

	return &dto.SendReplyResponse{
		Success:           true,
		MessageID:         message.ID,
		ProviderMessageID: outcome.ProviderMessageID,
		Provider:          string(outcome.Provider),
	}, nil
}

// logActivity is best-effort diagnostics and never fails a send.
func (u *dispatchUsecase) logActivity(workspaceID, threadID, provider, kind, detail string) {
	if runes := []rune(detail); len(runes) > activityDetailLimit {
		detail = string(runes[:activityDetailLimit])
	}
	entry := &activitydomain.ActivityLog{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		ThreadID:    threadID,
		Provider:    provider,
		Kind:        kind,
		Detail:      detail,
		CreatedAt:   time.Now(),
	}
	if err := u.activity.Create(entry); err != nil {
		log.Printf("[WARN] Unable to record activity for thread %s: %v", threadID, err)
	}
}
