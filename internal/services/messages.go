package services

// User-facing messages. Throttle messages carry a %d verb for the computed
// minutes-left value.
const (
	MsgEmailVerifiedSuccess   = "Email verified successfully. Account created."
	MsgEmailAlreadyVerified   = "Email already verified. Please login."
	MsgEmailAlreadyRegistered = "Email already registered. Please login instead."

	MsgInvalidEmailOrOTP     = "Invalid email or OTP. Please sign up again."
	MsgInvalidOTP            = "Invalid OTP. Please check and try again."
	MsgOTPMaxAttemptsReached = "Invalid OTP. Maximum attempts reached. Please try again in %d minute(s)."
	MsgOTPExpired            = "OTP has expired. Please request a new OTP."
	MsgOTPSentSuccess        = "OTP sent to your email. Please verify to complete registration."
	MsgOTPCooldownWait       = "Please wait %d minute(s) before requesting another OTP."
	MsgOTPLimitReached       = "OTP limit reached. Please try again in %d minute(s)."
	MsgNoSignupFound         = "No signup found for this email. Please sign up first."
	MsgOTPNotFound           = "OTP not found. Please request a new OTP."

	MsgEmailSendFailed = "Failed to send OTP email. Please try again."

	MsgPasswordResetOTPSent  = "Password reset OTP sent to your email."
	MsgPasswordResetSuccess  = "Password reset successfully."
	MsgPasswordChangeSuccess = "Password changed successfully."
	MsgInvalidOldPassword    = "Invalid old password."
	MsgOldNewPasswordSame    = "Old password and new password cannot be the same."
	MsgEmailNotFound         = "Email not found. Please check your email address."

	MsgLoginSuccess           = "Login successful."
	MsgLoginOTPSent           = "Login OTP sent to your email. Please verify to complete login."
	MsgInvalidEmailOrPassword = "Invalid email or password."
	MsgAccountNotVerified     = "Account not verified. Please verify your email first."
	MsgAccountBlocked         = "Your account has been blocked. Please contact support."
	MsgAccountSuspended       = "Your account has been suspended. Please contact support."
	MsgAccountInactive        = "Your account is inactive. Please contact support."

	MsgLogoutSuccess = "Logged out successfully."

	MsgChatSelfRequest      = "Cannot send chat request to yourself"
	MsgReceiverNotFound     = "Receiver not found"
	MsgChatAlreadyEnabled   = "Chat already enabled with this user"
	MsgChatRequestPending   = "Chat request already pending"
	MsgChatRequestNotFound  = "Chat request not found"
	MsgOnlyReceiverAccepts  = "Only the receiver can accept this request"
	MsgOnlyReceiverRejects  = "Only the receiver can reject this request"
	MsgOnlySenderCancels    = "Only the sender can cancel this request"
	MsgChatNotAllowed       = "Chat not allowed. Please send a chat request first."
	MsgConversationNotFound = "Conversation not found"
	MsgMessageNotFound      = "Message not found"
	MsgNotAParticipant      = "You are not a participant of this conversation"

	MsgGalleryLimitExceeded = "Gallery can have at most 10 media items."
)
