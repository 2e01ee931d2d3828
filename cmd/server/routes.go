package main

import (
	"github.com/gin-gonic/gin"

	"ether-wallet.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	walletHandler  *handlers.WalletHandler
	authMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public, session required for me/logout)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/logout", d.authHandler.Logout)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)
			auth.POST("/password-reset/request", d.authHandler.RequestPasswordReset)
			auth.POST("/password-reset/confirm", d.authHandler.ResetPassword)
		}

		// Wallet routes (protected)
		wallet := v1.Group("/wallet")
		wallet.Use(d.authMiddleware)
		{
			wallet.GET("", d.walletHandler.GetWallet)
			wallet.POST("/generate", d.walletHandler.GenerateWallet)
			wallet.POST("/send", d.walletHandler.SendTransaction)
			wallet.GET("/status", d.walletHandler.GetTransactionStatus)
			wallet.POST("/reset-status", d.walletHandler.ResetTransactionStatus)
			wallet.POST("/refresh-balance", d.walletHandler.RefreshBalance)
			wallet.GET("/transactions", d.walletHandler.GetTransactions)
		}
	}
}
