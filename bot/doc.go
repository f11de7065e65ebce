// Package bot is the chat front-end.
//
// Inbound texts are classified by Route into /start, /clear, unknown commands
// and questions. A Handler resets sessions or answers through the retry
// policy and replies through a Sender. The Dispatcher keeps each chat's
// messages in order while serving chats in parallel, and Telegram connects
// both to the Bot API.
//
// Every answered question is written to the AnswerLog as one JSON line.
package bot
