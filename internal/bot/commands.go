package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "list":
		b.handleList(ctx, message)
	case "settings":
		b.handleSettings(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "פקודה לא מוכרת, /help לרשימת הפקודות")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `שלום! אני עוזר ליומן ולתזכורות.

פשוט כתבו לי בעברית חופשית, למשל:
• פגישה עם דנה מחר ב-14:00
• תזכיר לי להתקשר לרופא ביום שלישי
• מה יש לי השבוע?

/help לכל הפקודות`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `הפקודות הזמינות:
/start - התחלה
/help - ההודעה הזאת
/list - האירועים הקרובים
/settings - כמה דקות לפני אירוע להזכיר (למשל: /settings 30)

חוץ מזה אפשר פשוט לכתוב:
• פגישה עם יוסי מחרתיים בצהריים
• תזכיר לי שעה לפני
• תמחק את התור לרופא
• תזיז את הפגישה ליום חמישי`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleSettings(ctx context.Context, message *tgbotapi.Message) {
	args := strings.TrimSpace(message.CommandArguments())
	if args == "" {
		lead, err := b.sessions.GetDefaultLeadTimeMinutes(ctx, message.From.ID)
		if err != nil {
			b.logger.Error("failed to read default lead time",
				zap.Error(err),
				zap.Int64("user_id", message.From.ID))
			b.sendMessage(message.Chat.ID, "לא הצלחתי לקרוא את ההגדרות, נסו שוב")
			return
		}
		b.sendMessage(message.Chat.ID, fmt.Sprintf("תזכורת ברירת מחדל: %d דקות לפני. לשינוי: /settings 30", lead))
		return
	}

	minutes, err := strconv.Atoi(args)
	if err != nil || minutes < 0 || minutes > 7*24*60 {
		b.sendMessage(message.Chat.ID, "צריך מספר דקות, למשל: /settings 30")
		return
	}

	if err := b.sessions.SetDefaultLeadTimeMinutes(ctx, message.From.ID, minutes); err != nil {
		b.logger.Error("failed to set default lead time",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendMessage(message.Chat.ID, "לא הצלחתי לשמור את ההגדרה, נסו שוב")
		return
	}
	b.sendMessage(message.Chat.ID, fmt.Sprintf("מעכשיו אזכיר %d דקות לפני", minutes))
}
