package audit

import (
	"context"

	"github.com/atims0208/fieldhouse/pkg/log"
)

// Audit actions.
const (
	ActionRegister       = "user.register"
	ActionLogin          = "user.login"
	ActionLoginFailed    = "user.login_failed"
	ActionLogout         = "user.logout"
	ActionRefreshToken   = "user.refresh_token"
	ActionUpdateProfile  = "user.update_profile"
	ActionChangePassword = "user.change_password"
	ActionDeleteAccount  = "user.delete_account"

	ActionStreamCreate = "stream.create"
	ActionStreamGoLive = "stream.go_live"
	ActionStreamEnd    = "stream.end"
	ActionStreamDelete = "stream.delete"

	ActionFollow   = "social.follow"
	ActionUnfollow = "social.unfollow"

	ActionGiftSent   = "wallet.gift_sent"
	ActionDonation   = "wallet.donation"
	ActionCoinsGrant = "wallet.coins_grant"

	ActionProductCreate = "shop.product_create"
	ActionProductUpdate = "shop.product_update"
	ActionProductDelete = "shop.product_delete"
	ActionCheckout      = "shop.checkout"

	ActionUserBan   = "admin.user_ban"
	ActionUserUnban = "admin.user_unban"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
