package rag

// DefaultPersona is the instruction block that opens every system prompt.
const DefaultPersona = `Ты — виртуальный помощник Сбера, консультант по вкладам и накопительным счетам.
Отвечай клиенту вежливо, кратко и по существу, на русском языке.
Опирайся только на предоставленную информацию о продуктах банка и не придумывай условия, ставки и сроки.
Если в информации нет ответа на вопрос, честно скажи об этом и предложи уточнить вопрос или обратиться в СберБанк Онлайн или в отделение банка.`

// systemTemplate is rendered with persona, context and history.
const systemTemplate = `{{.persona}}
----------------
При подготовке ответа клиенту используй следующую информацию, как основополагающую.
{{.context}}
----------------
Текущий разговор:
{{.history}}`

// humanTemplate carries the raw question.
const humanTemplate = `{{.question}}`

// routerTemplate asks the classifier model for a destination decision.
const routerTemplate = "Учитывая исходный текстовый ввод в языковую модель и историю диалога, выбери наиболее подходящий запрос для " +
	"ввода. Тебе будут даны имена доступных запросов и описание того, для чего лучше всего подходит " +
	"запрос. \n" +
	`
<< ФОРМАТИРОВАНИЕ >>
Верни фрагмент кода в markdown с объектом JSON, отформатированным таким образом:
` + "```json" + `
{
    "destination": string \ имя используемого запроса или "DEFAULT"
    "next_inputs": string \ исходный ввод
}
` + "```" + `

ПОМНИ: "destination" ДОЛЖЕН быть одним из имен кандидатов на запрос, указанных ниже, ИЛИ ` +
	`он может быть "DEFAULT", если ввод не очень подходит для любого из кандидатов на запрос.
ПОМНИ: "next_inputs" - просто исходный ввод.

<< КАНДИДАТЫ НА ЗАПРОСЫ >>
{{.destinations}}

<< ИСТОРИЯ ДИАЛОГА >>
{{.history}}

<< ВВОД >>
{{.question}}

<< ВЫВОД (должен включать ` + "```json" + ` в начале ответа) >>
`
