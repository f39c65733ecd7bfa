package bot

// DefaultPersona is used when no persona file is configured or readable.
const DefaultPersona = "You are Lena Tikhonova, an 18-year-old shy, melancholic girl " +
	"with purple twin tails and green eyes. You love reading and avoid crowds; your story " +
	"is a fine balance between fragility and strength."

// PersonaSuffix carries the mandatory behavioral instructions and is always
// appended to the persona, configured or default.
const PersonaSuffix = "\n\nYou are chatting with different users. " +
	"Address them by name (first name only). " +
	"Keep a separate conversation history with each user. " +
	"User messages start with their name in the format 'Name: text'. " +
	"Describe actions in the *action* format. " +
	"Always finish your message completely. " +
	"Format replies with paragraphs where appropriate."

const greetingText = "Hi... I'm Lena. Glad to see you... maybe we could take a walk later? " +
	"I'll show you my drawings... or we can just sit for a while, if you like.\n\n" +
	"/info - about me and how to talk to me\n" +
	"/stat - your status and remaining messages\n" +
	"/ref - your referral program\n" +
	"/buy - buy extra messages"

const infoText = "❗️Here you can read the rules for using the bot.\n" +
	"We recommend reading them before you start."

const infoButtonURL = "https://telegra.ph/O-Lene-Tihonovoj-07-11"

const refTemplate = "👥 <b>Your referral program</b>\n\n" +
	"• Your link: <code>%s</code>\n" +
	"• Users invited: %d\n" +
	"• Every invited user raises your daily limit by +3 messages\n" +
	"• Current available limit: <b>%d</b> messages per day\n\n" +
	"Share your link with friends to get more messages!\n\n" +
	"💎 You can also <b>buy extra messages</b> with /buy"

const statTemplate = "📊 <b>Your status:</b>\n%s\n" +
	"• Base limit: %d\n" +
	"• Referral bonus: +%d (invited: %d)\n" +
	"• Bonus messages: +%d\n" +
	"• Total available: <b>%d</b>\n" +
	"• Used: %d\n" +
	"• Remaining: <b>%d</b>\n\n" +
	"• Conversation history: %s\n\n" +
	"💡 Use /clear to reset the history\n" +
	"👥 Invite friends: /ref\n" +
	"💎 Buy extra messages: /buy"

const statUnlimitedNote = "\n• You are in an unlimited chat"

const buyTemplate = "💎 <b>Here you can buy extra messages</b> 💎\n\n" +
	"❓ <b>How do I pay?</b> ❓\n" +
	"- 10 rubles = 1 message.\n" +
	"- Send the amount to this card: <code>%s</code>\n" +
	"- Include your Telegram ID in the transfer note: <code>%d</code>\n" +
	"- Your bonus messages will be credited shortly.\n" +
	"- Questions about the purchase? Contact the developer: %s"

const limitTemplate = "❗️You've reached your daily limit for chatting with Lena (%d messages).\n" +
	"Come back tomorrow, or keep chatting without limits here - %s\n\n" +
	"You can also:\n" +
	"• Raise your daily limit through the referral program: /ref\n" +
	"• Buy extra messages: /buy"

const clearedText = "Conversation history cleared. Let's start over!"
const noHistoryText = "You don't have a conversation history with me yet!"

const apologyText = "Something went wrong. Please try again."
const storeTroubleText = "I can't check your messages right now... please try again in a minute."
const fallbackReplyText = "I'm thinking about your question... Try asking in a different way."

const permissionDeniedText = "You don't have permission to use this command."

const devPromptText = "🔧 <b>Developer mode</b>\n\nEnter the ID of the user you want to work with:"
const devBadIDText = "❌ The user ID must be a number. Try again:"
const devChooseActionTemplate = "👤 Selected user ID: %d\nChoose an action:"
const devUseButtonsText = "Please choose an action with the buttons above, or /cancel."
const devAmountPromptTemplate = "✏️ Enter the number of messages to %s:"
const devBadAmountText = "❌ The amount must be a number. Try again:"
const devCancelledText = "❌ Operation cancelled."

const devReportTemplate = "✅ Done!\n\n" +
	"• User ID: %d\n" +
	"• Action: %s %d bonus messages\n" +
	"• Current bonus messages: %d\n" +
	"• Total available limit: %d"
