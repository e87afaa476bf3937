package app

import "github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"

// defaultTemplates is the static message catalogue installed at startup.
// SMS bodies are kept short (segment cost); WhatsApp bodies may be longer.
// WHATSAPP_CLOUD shares the WhatsApp wording since both reach the same app.
var defaultTemplates = []domain.Template{
	// ORDER_PLACED
	{
		Trigger:       domain.TriggerOrderPlaced,
		Channel:       domain.ChannelSMS,
		Name:          "Commande reçue (SMS)",
		Description:   "Envoyé au client dès que sa commande est enregistrée.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: Bonjour {customer_name}, votre commande {order_number} de {order_total} {currency} a bien été reçue. Merci de votre confiance !",
	},
	{
		Trigger:       domain.TriggerOrderPlaced,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Commande reçue (WhatsApp)",
		Description:   "Envoyé au client dès que sa commande est enregistrée.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "Bonjour {customer_name} 🌸\n\nVotre commande *{order_number}* a bien été reçue.\n\n🛍 Articles : {order_product_with_qty}\n💰 Total : {order_total} {currency}\n📅 Date : {order_date}\n\nNous vous tiendrons informé(e) de chaque étape. Merci de votre confiance !\n\nCECHEMOI",
	},
	{
		Trigger:       domain.TriggerOrderPlaced,
		Channel:       domain.ChannelWhatsAppCloud,
		Name:          "Commande reçue (WhatsApp Cloud)",
		Description:   "Envoyé au client dès que sa commande est enregistrée.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "Bonjour {customer_name} 🌸\n\nVotre commande *{order_number}* a bien été reçue.\n\n🛍 Articles : {order_product_with_qty}\n💰 Total : {order_total} {currency}\n📅 Date : {order_date}\n\nNous vous tiendrons informé(e) de chaque étape. Merci de votre confiance !\n\nCECHEMOI",
	},

	// ORDER_CONFIRMED
	{
		Trigger:       domain.TriggerOrderConfirmed,
		Channel:       domain.ChannelSMS,
		Name:          "Commande confirmée (SMS)",
		Description:   "Envoyé quand l'atelier confirme la mise en production.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: Votre commande {order_number} est confirmée et part en confection. Nous vous préviendrons dès l'expédition.",
	},
	{
		Trigger:       domain.TriggerOrderConfirmed,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Commande confirmée (WhatsApp)",
		Description:   "Envoyé quand l'atelier confirme la mise en production.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "Bonne nouvelle {customer_name} ✂️\n\nVotre commande *{order_number}* est confirmée et notre atelier démarre la confection.\n\nNous vous écrirons dès que votre colis sera expédié.\n\nCECHEMOI",
	},

	// ORDER_SHIPPED
	{
		Trigger:       domain.TriggerOrderShipped,
		Channel:       domain.ChannelSMS,
		Name:          "Commande expédiée (SMS)",
		Description:   "Envoyé au client quand le colis part en livraison.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: Votre commande {order_number} est en route ! Suivi : {tracking_number}.",
	},
	{
		Trigger:       domain.TriggerOrderShipped,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Commande expédiée (WhatsApp)",
		Description:   "Envoyé au client quand le colis part en livraison.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "📦 {customer_name}, votre commande *{order_number}* vient d'être expédiée !\n\n🚚 Numéro de suivi : {tracking_number}\n\nMerci de garder votre téléphone à portée de main pour la livraison.\n\nCECHEMOI",
	},

	// ORDER_DELIVERED
	{
		Trigger:       domain.TriggerOrderDelivered,
		Channel:       domain.ChannelSMS,
		Name:          "Commande livrée (SMS)",
		Description:   "Remerciement après livraison.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: Votre commande {order_number} a été livrée. Merci {customer_name}, et à très bientôt !",
	},
	{
		Trigger:       domain.TriggerOrderDelivered,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Commande livrée (WhatsApp)",
		Description:   "Remerciement après livraison.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "✨ Votre commande *{order_number}* a été livrée !\n\nMerci {customer_name} pour votre confiance. N'hésitez pas à nous envoyer une photo de votre tenue, nous adorons voir nos créations portées 💛\n\nCECHEMOI",
	},

	// ORDER_CANCELLED
	{
		Trigger:       domain.TriggerOrderCancelled,
		Channel:       domain.ChannelSMS,
		Name:          "Commande annulée (SMS)",
		Description:   "Confirmation d'annulation.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: Votre commande {order_number} a été annulée. Contactez-nous pour toute question.",
	},
	{
		Trigger:       domain.TriggerOrderCancelled,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Commande annulée (WhatsApp)",
		Description:   "Confirmation d'annulation.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "Bonjour {customer_name},\n\nVotre commande *{order_number}* a bien été annulée.\n\nSi c'est une erreur ou si vous souhaitez passer une nouvelle commande, écrivez-nous simplement ici.\n\nCECHEMOI",
	},

	// PAYMENT_RECEIVED
	{
		Trigger:       domain.TriggerPaymentReceived,
		Channel:       domain.ChannelSMS,
		Name:          "Paiement reçu (SMS)",
		Description:   "Reçu de paiement envoyé au client.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: Paiement de {order_total} {currency} reçu pour la commande {order_number}. Merci {customer_name} !",
	},
	{
		Trigger:       domain.TriggerPaymentReceived,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Paiement reçu (WhatsApp)",
		Description:   "Reçu de paiement envoyé au client.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "✅ Paiement bien reçu !\n\nCommande : *{order_number}*\nMontant : {order_total} {currency}\nMode : {payment_method}\n\nMerci {customer_name}, votre commande suit son cours.\n\nCECHEMOI",
	},

	// PAYMENT_REMINDER_1 — courteous nudge
	{
		Trigger:       domain.TriggerPaymentReminder1,
		Channel:       domain.ChannelSMS,
		Name:          "Rappel paiement 1 (SMS)",
		Description:   "Premier rappel pour une commande impayée.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: Bonjour {customer_name}, petit rappel : votre commande {order_number} ({order_total} {currency}) attend son règlement. Merci !",
	},
	{
		Trigger:       domain.TriggerPaymentReminder1,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Rappel paiement 1 (WhatsApp)",
		Description:   "Premier rappel pour une commande impayée.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "Bonjour {customer_name} 👋\n\nPetit rappel en passant : votre commande *{order_number}* du {order_date} attend encore son règlement de *{order_total} {currency}*.\n\nDès réception du paiement, nous lançons la confection.\n\nBesoin d'aide pour payer ? Répondez simplement à ce message.\n\nCECHEMOI",
	},

	// PAYMENT_REMINDER_2 — firmer
	{
		Trigger:       domain.TriggerPaymentReminder2,
		Channel:       domain.ChannelSMS,
		Name:          "Rappel paiement 2 (SMS)",
		Description:   "Deuxième rappel pour une commande impayée.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: {customer_name}, votre commande {order_number} est toujours en attente de paiement ({order_total} {currency}). Elle sera mise de côté sans règlement sous 48h.",
	},
	{
		Trigger:       domain.TriggerPaymentReminder2,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Rappel paiement 2 (WhatsApp)",
		Description:   "Deuxième rappel pour une commande impayée.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "Bonjour {customer_name},\n\nVotre commande *{order_number}* ({order_total} {currency}) est toujours en attente de paiement.\n\n⏳ Sans règlement sous 48h, nous devrons la mettre de côté et les tissus réservés seront libérés.\n\nRépondez-nous si vous rencontrez un souci de paiement, on trouvera une solution ensemble.\n\nCECHEMOI",
	},

	// PAYMENT_REMINDER_3 — last call
	{
		Trigger:       domain.TriggerPaymentReminder3,
		Channel:       domain.ChannelSMS,
		Name:          "Rappel paiement 3 (SMS)",
		Description:   "Dernier rappel avant annulation de la commande.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: Dernier rappel {customer_name} : sans paiement de {order_total} {currency} pour la commande {order_number}, elle sera annulée demain.",
	},
	{
		Trigger:       domain.TriggerPaymentReminder3,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Rappel paiement 3 (WhatsApp)",
		Description:   "Dernier rappel avant annulation de la commande.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "Bonjour {customer_name},\n\n⚠️ Dernier rappel concernant votre commande *{order_number}*.\n\nSans règlement de *{order_total} {currency}* d'ici demain, la commande sera annulée automatiquement.\n\nNous serions tristes de ne pas vous habiller — un simple message et nous bloquons votre commande le temps qu'il faut.\n\nCECHEMOI",
	},

	// INVOICE_CREATED
	{
		Trigger:       domain.TriggerInvoiceCreated,
		Channel:       domain.ChannelSMS,
		Name:          "Facture émise (SMS)",
		Description:   "Envoyé quand la facture d'une commande est générée.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body:          "CECHEMOI: Votre facture {invoice_number} pour la commande {order_number} est disponible.",
	},
	{
		Trigger:       domain.TriggerInvoiceCreated,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Facture émise (WhatsApp)",
		Description:   "Envoyé quand la facture d'une commande est générée.",
		RecipientKind: domain.RecipientCustomer,
		Enabled:       true,
		Body: "🧾 Bonjour {customer_name},\n\nVotre facture *{invoice_number}* pour la commande *{order_number}* est prête.\n\nMontant : {order_total} {currency}\n\nMerci de votre confiance !\n\nCECHEMOI",
	},

	// NEW_ORDER_ADMIN
	{
		Trigger:       domain.TriggerNewOrderAdmin,
		Channel:       domain.ChannelSMS,
		Name:          "Nouvelle commande (admin, SMS)",
		Description:   "Alerte interne à chaque nouvelle commande.",
		RecipientKind: domain.RecipientAdmin,
		Enabled:       true,
		Body:          "Nouvelle commande {order_number}: {order_total} {currency} - {customer_name} ({billing_phone}).",
	},
	{
		Trigger:       domain.TriggerNewOrderAdmin,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Nouvelle commande (admin, WhatsApp)",
		Description:   "Alerte interne à chaque nouvelle commande.",
		RecipientKind: domain.RecipientAdmin,
		Enabled:       true,
		Body: "🛎 *Nouvelle commande*\n\nN° : {order_number}\nClient : {customer_name}\nTéléphone : {billing_phone}\nArticles : {order_product_with_qty}\nTotal : {order_total} {currency}\nPaiement : {payment_status}",
	},

	// LOW_STOCK_ADMIN
	{
		Trigger:       domain.TriggerLowStockAdmin,
		Channel:       domain.ChannelSMS,
		Name:          "Stock bas (admin, SMS)",
		Description:   "Alerte interne quand un article passe sous le seuil de stock.",
		RecipientKind: domain.RecipientAdmin,
		Enabled:       true,
		Body:          "Stock bas: {product_name} - {product_stock} restant(s) (seuil {low_stock_threshold}).",
	},
	{
		Trigger:       domain.TriggerLowStockAdmin,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Stock bas (admin, WhatsApp)",
		Description:   "Alerte interne quand un article passe sous le seuil de stock.",
		RecipientKind: domain.RecipientAdmin,
		Enabled:       true,
		Body: "📉 *Alerte stock*\n\nArticle : {product_name}\nRestant : {product_stock}\nSeuil : {low_stock_threshold}\n\nPensez à réapprovisionner.",
	},

	// DAILY_REPORT_ADMIN
	{
		Trigger:       domain.TriggerDailyReportAdmin,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Rapport quotidien (admin, WhatsApp)",
		Description:   "Résumé d'activité envoyé chaque soir.",
		RecipientKind: domain.RecipientAdmin,
		Enabled:       true,
		Body: "📊 *Rapport du {report_date}*\n\nCommandes : {orders_count}\nChiffre d'affaires : {total_revenue}\nNouveaux clients : {new_customers}\nTotal clients : {total_customers}\n\nBonne soirée !",
	},
}
