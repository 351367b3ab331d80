package randomize

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/go-faker/faker/v4"
)

type categoryFunc func(c *Context, rule Rule) (string, error)

type catKey struct {
	category string
	subType  string
}

func categoryKey(category, subType string) catKey {
	return catKey{strings.ToLower(category), strings.ToLower(subType)}
}

// categoryTable maps (category, subtype) to its generator. Built once at
// package initialization; validation resolves against the same table, so a
// config that passes validation can never miss at generation time.
var categoryTable = buildCategoryTable()

func buildCategoryTable() map[catKey]categoryFunc {
	t := make(map[catKey]categoryFunc)

	add := func(category, subType string, fn categoryFunc) {
		t[categoryKey(category, subType)] = fn
	}
	plain := func(fn func() string) categoryFunc {
		return func(*Context, Rule) (string, error) { return fn(), nil }
	}

	add("Address", "City", plain(func() string { return faker.GetRealAddress().City }))
	add("Address", "State", plain(func() string { return faker.GetRealAddress().State }))
	add("Address", "ZipCode", plain(func() string { return faker.GetRealAddress().PostalCode }))
	add("Address", "StreetAddress", plain(func() string { return faker.GetRealAddress().Address }))
	add("Address", "Latitude", func(c *Context, _ Rule) (string, error) {
		return strconv.FormatFloat(-90+c.rng.Float64()*180, 'f', 6, 64), nil
	})
	add("Address", "Longitude", func(c *Context, _ Rule) (string, error) {
		return strconv.FormatFloat(-180+c.rng.Float64()*360, 'f', 6, 64), nil
	})

	add("Internet", "Email", plain(func() string { return faker.Email() }))
	add("Internet", "UserName", plain(func() string { return faker.Username() }))
	add("Internet", "Password", plain(func() string { return faker.Password() }))
	add("Internet", "Url", plain(func() string { return faker.URL() }))
	add("Internet", "DomainName", plain(func() string { return faker.DomainName() }))
	add("Internet", "Ip", plain(func() string { return faker.IPv4() }))
	add("Internet", "Ipv6", plain(func() string { return faker.IPv6() }))
	add("Internet", "Mac", macAddress)

	add("Name", "FirstName", plain(func() string { return faker.FirstName() }))
	add("Name", "LastName", plain(func() string { return faker.LastName() }))
	add("Name", "FullName", plain(func() string { return faker.Name() }))
	add("Person", "FirstName", plain(func() string { return faker.FirstName() }))
	add("Person", "LastName", plain(func() string { return faker.LastName() }))
	add("Person", "FullName", plain(func() string { return faker.Name() }))

	add("Phone", "PhoneNumber", plain(func() string { return faker.Phonenumber() }))
	add("Phone", "E164", plain(func() string { return faker.E164PhoneNumber() }))
	add("Phone", "TollFree", plain(func() string { return faker.TollFreePhoneNumber() }))

	add("Finance", "CreditCardNumber", plain(func() string { return faker.CCNumber() }))
	add("Finance", "CreditCardType", plain(func() string { return faker.CCType() }))
	add("Finance", "Currency", plain(func() string { return faker.Currency() }))
	add("Finance", "Amount", func(c *Context, rule Rule) (string, error) {
		precision := rule.Precision
		if precision <= 0 {
			precision = 2
		}
		return strconv.FormatFloat(c.decimalValue(rule), 'f', precision, 64), nil
	})

	add("Lorem", "Word", plain(func() string { return faker.Word() }))
	add("Lorem", "Sentence", loremSentence)
	add("Lorem", "Paragraph", plain(func() string { return faker.Paragraph() }))

	add("Company", "Name", companyName)
	add("Company", "Suffix", func(c *Context, _ Rule) (string, error) {
		return companySuffixes[c.rng.Intn(len(companySuffixes))], nil
	})

	add("Date", "Past", func(c *Context, rule Rule) (string, error) {
		r := rule
		r.MaxTime = nil
		r.MinTime = nil
		return c.timeValue(r).Format(rule.Type.TimeLayout()), nil
	})
	add("Date", "Future", func(c *Context, rule Rule) (string, error) {
		min := c.now
		max := c.now.Add(defaultLookback)
		r := rule
		r.MinTime = &min
		r.MaxTime = &max
		return c.timeValue(r).Format(rule.Type.TimeLayout()), nil
	})

	add("Random", "Shuffle", func(c *Context, rule Rule) (string, error) {
		if rule.Value == "" {
			return "", errors.New("shuffle requires a source value")
		}
		return shuffleValue(c.rng, rule.Value), nil
	})

	return t
}

func IsSupportedCategory(category, subType string) bool {
	_, ok := categoryTable[categoryKey(category, subType)]
	return ok
}

// SupportedCategories lists every category.subtype pair, sorted, for
// validation errors and CLI help.
func SupportedCategories() []string {
	out := make([]string, 0, len(categoryTable))
	for k := range categoryTable {
		out = append(out, k.category+"."+k.subType)
	}
	sort.Strings(out)
	return out
}

const hexDigits = "0123456789abcdef"

// macAddress honors a custom Format ('#' placeholders become random hex
// digits) or a Separator between octets; with neither it defers to faker.
func macAddress(c *Context, rule Rule) (string, error) {
	if rule.Format != "" {
		var b strings.Builder
		for _, r := range rule.Format {
			if r == '#' {
				b.WriteByte(hexDigits[c.rng.Intn(16)])
			} else {
				b.WriteRune(r)
			}
		}
		return b.String(), nil
	}

	if rule.Separator != "" {
		octets := make([]string, 6)
		for i := range octets {
			octets[i] = string(hexDigits[c.rng.Intn(16)]) + string(hexDigits[c.rng.Intn(16)])
		}
		return strings.Join(octets, rule.Separator), nil
	}

	return faker.MacAddress(), nil
}

func loremSentence(c *Context, rule Rule) (string, error) {
	minWords, maxWords := 5, 10
	if rule.Min != nil {
		minWords = int(*rule.Min)
	}
	if rule.Max != nil {
		maxWords = int(*rule.Max)
	}
	if minWords < 1 {
		minWords = 1
	}
	if maxWords < minWords {
		maxWords = minWords
	}

	count := minWords
	if maxWords > minWords {
		count = minWords + c.rng.Intn(maxWords-minWords+1)
	}

	sep := rule.Separator
	if sep == "" {
		sep = " "
	}

	words := make([]string, count)
	for i := range words {
		words[i] = faker.Word()
	}
	sentence := strings.Join(words, sep)
	if sentence == "" {
		return "", nil
	}
	return strings.ToUpper(sentence[:1]) + sentence[1:] + ".", nil
}

var companySuffixes = []string{"LLC", "Inc", "Group", "Labs", "Partners", "Holdings", "Systems", "Consulting"}

func companyName(c *Context, _ Rule) (string, error) {
	word := faker.Word()
	if word != "" {
		word = strings.ToUpper(word[:1]) + word[1:]
	}
	return word + " " + companySuffixes[c.rng.Intn(len(companySuffixes))], nil
}
