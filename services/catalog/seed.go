package catalog

import (
	"context"

	"go.uber.org/zap"
)

func strptr(s string) *string { return &s }

var sampleAds = []CreateAdInput{
	{
		Title:        "Новый iPhone 15 Pro",
		Description:  "Посмотрите обзор нового iPhone 15 Pro с улучшенной камерой и процессором A17 Pro. Узнайте о всех новых функциях и возможностях.",
		RewardAmount: 10.0,
		ImageURL:     strptr("https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=400&h=300&fit=crop"),
	},
	{
		Title:        "Курс по программированию",
		Description:  "Изучите основы программирования на Python за 30 дней. Интерактивные уроки, практические задания и сертификат по окончании.",
		RewardAmount: 15.0,
		ImageURL:     strptr("https://images.unsplash.com/photo-1461749280684-dccba630e2f6?w=400&h=300&fit=crop"),
	},
	{
		Title:        "Фитнес-приложение",
		Description:  "Следите за своим здоровьем с нашим новым фитнес-приложением. Трекинг тренировок, питание и мотивация каждый день.",
		RewardAmount: 8.0,
		ImageURL:     strptr("https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=400&h=300&fit=crop"),
	},
	{
		Title:        "Инвестиции в криптовалюты",
		Description:  "Узнайте, как правильно инвестировать в криптовалюты. Анализ рынка, стратегии и управление рисками от экспертов.",
		RewardAmount: 20.0,
		ImageURL:     strptr("https://images.unsplash.com/photo-1639762681485-074b7f938ba0?w=400&h=300&fit=crop"),
	},
	{
		Title:        "Онлайн-магазин модной одежды",
		Description:  "Новая коллекция весенней одежды уже в продаже! Скидки до 50% на все товары. Бесплатная доставка по всей стране.",
		RewardAmount: 12.0,
		ImageURL:     strptr("https://images.unsplash.com/photo-1441986300917-64674bd600d8?w=400&h=300&fit=crop"),
	},
}

// Seed inserts the sample catalog once; it is a no-op when ads already exist.
func (s *Service) Seed(ctx context.Context) error {
	count, err := s.ads.Count(ctx, nil)
	if err != nil {
		return err
	}
	if count > 0 {
		zap.L().Info("sample ads already exist", zap.Int64("count", count))
		return nil
	}

	for _, in := range sampleAds {
		if _, err := s.CreateAd(ctx, in); err != nil {
			return err
		}
	}

	zap.L().Info("created sample ads", zap.Int("count", len(sampleAds)))
	return nil
}
